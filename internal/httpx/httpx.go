// Package httpx holds the gin helpers shared by the API packages.
package httpx

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaitan80/liga-voley/internal/domainerr"
)

// ActorKey is the gin context key holding the authenticated user id.
const ActorKey = "actor_id"

// AdminKey is the gin context key flagging an admin session.
const AdminKey = "actor_admin"

// ActorID returns the id of the authenticated user, or 0.
func ActorID(c *gin.Context) int64 {
	if v, ok := c.Get(ActorKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// Error writes err as JSON. Workflow failures keep their kind and field,
// anything else is logged and reported as an internal error.
func Error(c *gin.Context, err error) {
	status := domainerr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error", "code": "Internal"})
		return
	}
	body := gin.H{"error": err.Error(), "code": domainerr.Code(err)}
	if f := domainerr.FieldOf(err); f != "" {
		body["field"] = f
	}
	c.JSON(status, body)
}

// BadJSON answers a request whose body could not be decoded.
func BadJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad json", "code": "InvalidInput"})
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Error(c, domainerr.Invalid(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// QueryID reads an optional positive integer query parameter. Absent yields 0.
func QueryID(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerr.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// QueryTime reads an optional RFC3339 or YYYY-MM-DD query parameter.
func QueryTime(c *gin.Context, name string, loc *time.Location) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return nil, domainerr.Invalid(name, "expected RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}

// Protect conditionally wraps h with the given middleware for mutating routes.
// Read routes stay public.
func Protect(protect gin.HandlerFunc, h gin.HandlerFunc) gin.HandlerFunc {
	if protect == nil {
		return h
	}
	return func(c *gin.Context) {
		protect(c)
		if c.IsAborted() {
			return
		}
		h(c)
	}
}

var errNoActor = errors.New("no authenticated user")

// RequireActor returns the actor id or aborts with 401.
func RequireActor(c *gin.Context) (int64, bool) {
	id := ActorID(c)
	if id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errNoActor.Error(), "code": "Unauthorized"})
		return 0, false
	}
	return id, true
}
