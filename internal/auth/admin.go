package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/xaitan80/liga-voley/internal/httpx"
)

// RegisterAdminRoutes mounts user management for league administrators.
func RegisterAdminRoutes(r *gin.Engine, repo *Repository) {
	admin := r.Group("/api/admin", RequireAdmin(repo))

	fail := func(c *gin.Context, err error) {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}

	admin.GET("/users", func(c *gin.Context) {
		users, err := repo.ListUsers(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	})

	admin.POST("/users/:id/reset_password", func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
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
		if err := repo.SetPasswordHash(c.Request.Context(), id, string(hash)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	admin.PATCH("/users/:id/admin", func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req struct {
			IsAdmin bool `json:"is_admin"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if !req.IsAdmin {
			// keep at least one admin
			n, err := repo.CountOtherAdmins(c.Request.Context(), id)
			if err != nil {
				fail(c, err)
				return
			}
			if n == 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "cannot remove the last admin"})
				return
			}
		}
		if err := repo.SetAdmin(c.Request.Context(), id, req.IsAdmin); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	admin.DELETE("/users/:id", func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		if id == httpx.ActorID(c) {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot delete yourself"})
			return
		}
		if err := repo.DeleteUser(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
