package handlers

import (
	"net/http"
	"time"

	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

const tokenCookie = "token"

// authedHandler receives the verified identity as an explicit argument.
type authedHandler func(c *gin.Context, id service.Identity)

// requireAuth lets the request through only with a valid session cookie.
// Every failure looks the same to the client: a redirect to the login form.
func (h *Handler) requireAuth(next authedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(tokenCookie)
		if err != nil || raw == "" {
			h.toLogin(c)
			return
		}

		id, err := h.services.ParseToken(raw)
		if err != nil {
			if h.log != nil {
				h.log.Debugw("auth_gate_rejected", "path", c.Request.URL.Path, "err", err)
			}
			h.toLogin(c)
			return
		}

		next(c, id)
	}
}

func (h *Handler) toLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

func (h *Handler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, int(service.TokenTTL/time.Second), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	)
}

func (h *Handler) requestMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	h.opts.Metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
}
