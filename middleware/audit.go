package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// proxyHeaders are checked in order before falling back to RemoteAddr.
var proxyHeaders = []string{
	"X-Forwarded-For", // may hold a list, first entry is the client
	"X-Real-Ip",
	"CF-Connecting-IP",
	"X-Forwarded",
}

// AuditMiddleware extracts and stores the client IP for audit logging
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, getClientIP(c))
		c.Next()
	}
}

func getClientIP(c *gin.Context) string {
	for _, h := range proxyHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if v = strings.TrimSpace(v); net.ParseIP(v) != nil {
			return v
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// GetIPFromContext retrieves the client IP from gin context
func GetIPFromContext(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return getClientIP(c)
}
