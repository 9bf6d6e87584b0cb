// Package auth provides users, cookie sessions and the gin middleware that
// puts the acting user into the request context.
package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/httpx"
)

const CookieName = "session_token"

// MinPasswordLen is enforced on registration and password resets.
const MinPasswordLen = 12

// Options configures sessions and admin bootstrap.
type Options struct {
	TTL          time.Duration
	CookieSecure bool
	// AdminEmails are made administrators on registration.
	AdminEmails []string
}

func (o Options) ttl() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return 30 * 24 * time.Hour
}

func (o Options) isAdminEmail(email string) bool {
	for _, e := range o.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterRoutes(r *gin.Engine, repo *Repository, opts Options) {
	api := r.Group("/api/auth")

	api.POST("/register", func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		if len(req.Password) < MinPasswordLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password too short (min 12)"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
			return
		}

		u, err := repo.CreateUser(c.Request.Context(), req.Email, string(hash), opts.isAdminEmail(req.Email))
		if err != nil {
			if dbpkg.IsUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
				return
			}
			log.Printf("register %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email, "is_admin": u.IsAdmin})
	})

	api.POST("/login", func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing email or password"})
			return
		}

		u, err := repo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		s, err := repo.CreateSession(c.Request.Context(), u.ID, opts.ttl())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session failed"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, s.Token, int(opts.ttl().Seconds()), "/", "", opts.CookieSecure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.POST("/logout", func(c *gin.Context) {
		tok, err := c.Cookie(CookieName)
		if err == nil && tok != "" {
			_ = repo.DeleteSession(c.Request.Context(), tok)
		}
		c.SetSameSite(http.SameSiteLaxMode)
		// overwrite with expired cookie
		c.SetCookie(CookieName, "", -1, "/", "", opts.CookieSecure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.GET("/me", func(c *gin.Context) {
		u, ok := CurrentUser(c, repo)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "email": u.Email, "is_admin": u.IsAdmin})
	})
}

// CurrentUser resolves user from the session cookie for convenience.
func CurrentUser(c *gin.Context, repo *Repository) (User, bool) {
	tok, err := c.Cookie(CookieName)
	if err != nil || tok == "" {
		return User{}, false
	}
	u, err := repo.GetUserBySession(c.Request.Context(), tok)
	if err != nil {
		return User{}, false
	}
	return u, true
}

func resolve(c *gin.Context, repo *Repository) (User, bool) {
	tok, err := c.Cookie(CookieName)
	if err != nil || tok == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "Unauthorized"})
		return User{}, false
	}
	u, err := repo.GetUserBySession(c.Request.Context(), tok)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "Unauthorized"})
			return User{}, false
		}
		log.Printf("resolve session: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth failed", "code": "Internal"})
		return User{}, false
	}
	c.Set(httpx.ActorKey, u.ID)
	c.Set(httpx.AdminKey, u.IsAdmin)
	return u, true
}

// RequireUser aborts with 401 unless the request carries a live session.
func RequireUser(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := resolve(c, repo); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireUser plus 403 for non-admins.
func RequireAdmin(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := resolve(c, repo)
		if !ok {
			return
		}
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "Forbidden"})
			return
		}
		c.Next()
	}
}
