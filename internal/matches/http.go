package matches

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/clubs"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/httpx"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// ClubDirectory resolves club names for the fixture import and the feeds.
type ClubDirectory interface {
	ListClubs(ctx context.Context) ([]clubs.Club, error)
}

func clubIndex(ctx context.Context, dir ClubDirectory) (map[int64]string, map[string]int64, error) {
	list, err := dir.ListClubs(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int64]string, len(list))
	ids := make(map[string]int64, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
		ids[fold(c.Name)] = c.ID
	}
	return names, ids, nil
}

type transitionReq struct {
	State  lifecycle.State `json:"state"`
	Reason string          `json:"reason"`
}

func filterFrom(c *gin.Context, loc *time.Location) (Filter, error) {
	var f Filter
	var err error
	if f.EventID, err = httpx.QueryID(c, "event"); err != nil {
		return Filter{}, err
	}
	if f.ClubID, err = httpx.QueryID(c, "club"); err != nil {
		return Filter{}, err
	}
	if f.From, err = httpx.QueryTime(c, "from", loc); err != nil {
		return Filter{}, err
	}
	if f.To, err = httpx.QueryTime(c, "to", loc); err != nil {
		return Filter{}, err
	}
	f.State = lifecycle.State(c.Query("state"))
	return f, nil
}

func RegisterRoutes(r *gin.Engine, svc *Service, dir ClubDirectory, protect gin.HandlerFunc, loc *time.Location) {
	api := r.Group("/api")
	{
		// Import fixtures for an event from CSV or XLSX (protected)
		api.POST("/matches/import", httpx.Protect(protect, func(c *gin.Context) {
			eventID, err := httpx.QueryID(c, "event")
			if err == nil && eventID == 0 {
				err = domainerr.Invalid("event", "required")
			}
			if err != nil {
				httpx.Error(c, err)
				return
			}
			if err := c.Request.ParseMultipartForm(12 << 20); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "multipart too large", "code": "InvalidInput"})
				return
			}
			fh, err := c.FormFile("file")
			if err != nil {
				httpx.Error(c, domainerr.Invalid("file", "missing"))
				return
			}
			rows, err := parseImport(fh)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			_, ids, err := clubIndex(c.Request.Context(), dir)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, svc.ImportFixtures(c.Request.Context(), eventID, rows, ids, loc))
		}))

		// iCal feed, optionally for one event
		api.GET("/matches.ics", func(c *gin.Context) {
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
			names, _, err := clubIndex(c.Request.Context(), dir)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.Header("Content-Type", "text/calendar; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename=partidos.ics")
			writeICal(c.Writer, list, names, loc, time.Now())
		})

		api.GET("/matches.csv", func(c *gin.Context) {
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
			names, _, err := clubIndex(c.Request.Context(), dir)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			filename := fmt.Sprintf("partidos_%s.csv", time.Now().In(loc).Format(time.DateOnly))
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename="+filename)
			if err := writeCSV(c.Writer, list, names, loc); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		})

		api.GET("/matches", func(c *gin.Context) {
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

		api.GET("/matches/:id", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			m, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, m)
		})

		api.GET("/matches/:id/result", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			res, err := svc.GetResult(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, res)
		})

		api.POST("/matches", httpx.Protect(protect, func(c *gin.Context) {
			var in Input
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.BadJSON(c)
				return
			}
			m, err := svc.Schedule(c.Request.Context(), in)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, m)
		}))

		api.PATCH("/matches/:id", httpx.Protect(protect, func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var in Input
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.BadJSON(c)
				return
			}
			m, err := svc.Reschedule(c.Request.Context(), id, in)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, m)
		}))

		api.POST("/matches/:id/transition", httpx.Protect(protect, func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var req transitionReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			m, err := svc.Transition(c.Request.Context(), id, req.State, req.Reason)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, m)
		}))

		api.POST("/matches/:id/result", httpx.Protect(protect, func(c *gin.Context) {
			actor, ok := httpx.RequireActor(c)
			if !ok {
				return
			}
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			var in ResultInput
			if err := c.ShouldBindJSON(&in); err != nil {
				httpx.BadJSON(c)
				return
			}
			res, err := svc.RecordResult(c.Request.Context(), id, in, actor)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, res)
		}))
	}
}
