package events

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/httpx"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type patchReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Type        *Type      `json:"type"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type transitionReq struct {
	State lifecycle.State `json:"state"`
}

func filterFrom(c *gin.Context, loc *time.Location) (Filter, error) {
	f := Filter{Type: Type(c.Query("type")), State: lifecycle.State(c.Query("state"))}
	if raw := c.Query("upcoming"); raw != "" {
		up, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, domainerr.Invalid("upcoming", "expected a boolean")
		}
		if up {
			y, m, d := time.Now().In(loc).Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, loc)
			f.StartsFrom = &today
		}
	}
	return f, nil
}

// RegisterRoutes mounts the event endpoints. Mutations go through protect.
func RegisterRoutes(r *gin.Engine, svc *Service, protect gin.HandlerFunc, loc *time.Location) {
	api := r.Group("/api")
	{
		api.GET("/events", func(c *gin.Context) {
			f, err := filterFrom(c, loc)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			list, err := svc.List(c.Request.Context(), f)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		api.GET("/events/:id", func(c *gin.Context) {
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

		api.GET("/events/:id/clubs", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			ids, err := svc.ListEnrolledClubs(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"event_id": id, "club_ids": ids})
		})

		api.POST("/events", httpx.Protect(protect, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			var in Input
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.BadJSON(c)
				return
			}
			e, err := svc.Create(c.Request.Context(), in, actor)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, e)
		}))

		api.PATCH("/events/:id", httpx.Protect(protect, func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var req patchReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			e, err := svc.Update(c.Request.Context(), id, Patch{
				Name:        req.Name,
				Description: req.Description,
				Location:    req.Location,
				Type:        req.Type,
				StartDate:   req.StartDate,
				EndDate:     req.EndDate,
			})
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, e)
		}))

		api.POST("/events/:id/transition", httpx.Protect(protect, func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var req transitionReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			e, err := svc.Transition(c.Request.Context(), id, req.State)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, e)
		}))

		api.POST("/events/:id/cancel", httpx.Protect(protect, func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			e, err := svc.Cancel(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, e)
		}))
	}
}
