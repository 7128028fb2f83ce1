package middleware

import (
	"github.com/gin-gonic/gin"
)

// Role constants to avoid string typos
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAnalyst = "analyst"
)

// Roles lists every assignable role.
var Roles = []string{RoleAdmin, RoleManager, RoleAnalyst}

// Caller is the already-resolved identity behind a request. Reporting code
// treats it as opaque and only reads the user id for audit entries.
type Caller struct {
	UserID         uint
	Email          string
	RoleName       string
	PermissionType string // "full" or "readonly"
}

// NewCaller derives the permission type from the role.
func NewCaller(userID uint, email, role string) Caller {
	perm := "readonly"
	if role == RoleAdmin || role == RoleManager {
		perm = "full"
	}
	return Caller{UserID: userID, Email: email, RoleName: role, PermissionType: perm}
}

// CanWrite returns true if the caller has write permissions
func (c Caller) CanWrite() bool {
	return c.PermissionType == "full"
}

// CanRead returns true if the caller has read permissions
func (c Caller) CanRead() bool {
	return c.PermissionType == "full" || c.PermissionType == "readonly"
}

const callerKey = "caller"

// GetCaller returns the caller set by AuthMiddleware.
func GetCaller(c *gin.Context) (Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// GetUserID returns the caller's user id for audit entries, or nil.
func GetUserID(c *gin.Context) *uint {
	caller, ok := GetCaller(c)
	if !ok {
		return nil
	}
	id := caller.UserID
	return &id
}
