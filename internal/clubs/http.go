package clubs

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/httpx"
)

type clubReq struct {
	Name          string  `json:"name"`
	Founded       *string `json:"founded"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Branch        string  `json:"branch"`
	Category      string  `json:"category"`
	ManagerUserID *int64  `json:"manager_user_id"`
}

type athleteReq struct {
	DocumentID  string  `json:"document_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	BirthDate   *string `json:"birth_date"`
	Gender      string  `json:"gender"`
	Position    string  `json:"position"`
	ShirtNumber int     `json:"shirt_number"`
	ClubID      *int64  `json:"club_id"`
}

func parseDate(field string, p *string) (*time.Time, error) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*p))
	if err != nil {
		return nil, domainerr.Invalid(field, "expected YYYY-MM-DD")
	}
	return &t, nil
}

func RegisterRoutes(r *gin.Engine, repo *Repo, protect gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/clubs", func(c *gin.Context) {
			list, err := repo.ListClubs(c.Request.Context())
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		api.GET("/clubs/:id", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			club, err := repo.GetClub(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, club)
		})

		api.GET("/clubs/:id/athletes", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			list, err := repo.ListAthletes(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, list)
		})

		api.POST("/clubs", httpx.Protect(protect, func(c *gin.Context) {
			var req clubReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			founded, err := parseDate("founded", req.Founded)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			club := Club{
				Name:          req.Name,
				Founded:       founded,
				Address:       req.Address,
				Phone:         req.Phone,
				Email:         req.Email,
				Branch:        req.Branch,
				Category:      req.Category,
				ManagerUserID: req.ManagerUserID,
			}
			if err := repo.CreateClub(c.Request.Context(), &club); err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, club)
		}))

		api.GET("/athletes/:id", func(c *gin.Context) {
			id, ok := httpx.ParamID(c, "id")
			if !ok {
				return
			}
			a, err := repo.GetAthlete(c.Request.Context(), id)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusOK, a)
		})

		api.POST("/athletes", httpx.Protect(protect, func(c *gin.Context) {
			var req athleteReq
			if err := c.ShouldBindJSON(&req); err != nil {
				httpx.BadJSON(c)
				return
			}
			birth, err := parseDate("birth_date", req.BirthDate)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			a := Athlete{
				DocumentID:  req.DocumentID,
				FirstName:   req.FirstName,
				LastName:    req.LastName,
				BirthDate:   birth,
				Gender:      req.Gender,
				Position:    req.Position,
				ShirtNumber: req.ShirtNumber,
				ClubID:      req.ClubID,
			}
			if err := repo.CreateAthlete(c.Request.Context(), &a); err != nil {
				httpx.Error(c, err)
				return
			}
			c.JSON(http.StatusCreated, a)
		}))
	}
}
