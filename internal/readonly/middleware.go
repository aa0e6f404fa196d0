// Package readonly blocks catalog mutations when the instance is served read-only.
package readonly

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is shown for every blocked request.
const Message = "The catalog is read-only; changes are disabled."

// ContextKey stores the read-only flag for template rendering.
const ContextKey = "read_only"

// Notifier surfaces the blocked message on the next rendered page.
type Notifier func(c *gin.Context, message string)

// Middleware rejects write requests while read-only mode is on.
type Middleware struct {
	enabled bool
	notify  Notifier
}

// NewMiddleware creates a read-only middleware. With a notifier, blocked
// form posts are redirected back with a flashed warning instead of a 403 page.
func NewMiddleware(enabled bool, notify Notifier) *Middleware {
	return &Middleware{enabled: enabled, notify: notify}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.enabled)

		if !m.enabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     Message,
			"read_only": true,
		})
		return
	}

	if m.notify != nil {
		m.notify(c, Message)
		c.Redirect(http.StatusSeeOther, redirectTarget(c.Request))
		c.Abort()
		return
	}

	c.String(http.StatusForbidden, Message)
	c.Abort()
}

// redirectTarget sends the browser back to the referring page when it is on
// this host, and to the home page otherwise.
func redirectTarget(r *http.Request) string {
	const fallback = "/home"

	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" {
		return fallback
	}
	if ref.Host != "" && ref.Host != r.Host {
		return fallback
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return fallback
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.Contains(ref.Path, `\`) {
		return fallback
	}
	target := ref.EscapedPath()
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}
