package transfers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/httpx"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type requestReq struct {
	AthleteID         int64  `json:"athlete_id"`
	OriginClubID      int64  `json:"origin_club_id"`
	DestinationClubID int64  `json:"destination_club_id"`
	TransferDate      string `json:"transfer_date"`
	Motive            string `json:"motive"`
}

type rejectReq struct {
	Motive string `json:"motive"`
}

func RegisterRoutes(r *gin.Engine, svc *Service, protect, admin gin.HandlerFunc, loc *time.Location) {
	api := r.Group("/api")
	{
		api.GET("/transfers", func(c *gin.Context) {
			athlete, err := httpx.QueryID(c, "athlete")
			if err != nil {
				httpx.Error(c, err)
				return
			}
			club, err := httpx.QueryID(c, "club")
			if err != nil {
				httpx.Error(c, err)
				return
			}
			list, err := svc.List(c.Request.Context(), Filter{AthleteID: athlete, ClubID: club, State: lifecycle.State(c.Query("state"))})
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		api.GET("/transfers/:id", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			t, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, t)
		})

		api.POST("/transfers", httpx.Protect(protect, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			var req requestReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			in := Input{
				AthleteID:         req.AthleteID,
				OriginClubID:      req.OriginClubID,
				DestinationClubID: req.DestinationClubID,
				Motive:            req.Motive,
			}
			if raw := strings.TrimSpace(req.TransferDate); raw != "" {
				d, err := time.ParseInLocation(time.DateOnly, raw, loc)
				if err != nil {
					httpx.Error(c, domainerr.Invalid("transfer_date", "expected YYYY-MM-DD"))
					return
				}
				in.TransferDate = d
			}
			t, err := svc.Request(c.Request.Context(), in, actor)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, t)
		}))

		api.POST("/transfers/:id/approve", httpx.Protect(admin, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			t, err := svc.Approve(c.Request.Context(), id, actor)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, t)
		}))

		api.POST("/transfers/:id/reject", httpx.Protect(admin, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var req rejectReq
			// body is optional
			if c.Request.ContentLength != 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					httpx.BadJSON(c)
					return
				}
			}
			t, err := svc.Reject(c.Request.Context(), id, actor, req.Motive)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, t)
		}))
	}
}
