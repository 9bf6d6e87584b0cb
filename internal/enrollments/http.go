package enrollments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/httpx"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type requestReq struct {
	EventID int64 `json:"event_id"`
	ClubID  int64 `json:"club_id"`
}

// RegisterRoutes mounts the enrollment endpoints. Requests need a session
// (protect), decisions need an admin session (admin).
func RegisterRoutes(r *gin.Engine, svc *Service, protect, admin gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/enrollments", func(c *gin.Context) {
			eventID, err := httpx.QueryID(c, "event")
			if err != nil {
				httpx.Error(c, err)
				return
			}
			clubID, err := httpx.QueryID(c, "club")
			if err != nil {
				httpx.Error(c, err)
				return
			}
			var list []Enrollment
			switch {
			case eventID != 0:
				list, err = svc.ListByEvent(c.Request.Context(), eventID, lifecycle.State(c.Query("state")))
			case clubID != 0:
				list, err = svc.ListByClub(c.Request.Context(), clubID)
			default:
				err = domainerr.Invalid("event", "event or club is required")
			}
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		api.GET("/enrollments/:id", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			e, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, e)
		})

		api.POST("/enrollments", httpx.Protect(protect, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			var req requestReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			e, err := svc.Request(c.Request.Context(), req.EventID, req.ClubID, actor)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, e)
		}))

		decide := func(fn func(*Service, *gin.Context, int64, int64) (Enrollment, error)) gin.HandlerFunc {
			return httpx.Protect(admin, func(c *gin.Context) {
				actor, ok := httpx.RequireActor(c)
				if !ok {
					return
				}
				id, ok := httpx.ParamID(c, "id")
				if !ok {
					return
				}
				e, err := fn(svc, c, id, actor)
				if err != nil {
					httpx.Error(c, err)
					return
				}
				c.JSON(http.StatusOK, e)
			})
		}
		api.POST("/enrollments/:id/approve", decide(func(s *Service, c *gin.Context, id, actor int64) (Enrollment, error) {
			return s.Approve(c.Request.Context(), id, actor)
		}))
		api.POST("/enrollments/:id/reject", decide(func(s *Service, c *gin.Context, id, actor int64) (Enrollment, error) {
			return s.Reject(c.Request.Context(), id, actor)
		}))
	}
}
