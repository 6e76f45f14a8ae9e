package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

// handleServiceErr answers the failures every private page shares and reports
// whether it wrote a response.
func (h *Handler) handleServiceErr(c *gin.Context, op string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrUnauthenticated):
		h.clearTokenCookie(c)
		h.toLogin(c)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotFound):
		c.Redirect(http.StatusFound, "/profile")
	default:
		if h.log != nil {
			h.log.Errorw(op+"_failed", "err", err)
		}
		h.renderError(c)
	}
	return true
}

func (h *Handler) renderError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "error": msgSomethingFailed})
}

// pathID parses :id. A malformed id behaves like an id the caller does not own.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Redirect(http.StatusFound, "/profile")
		return 0, false
	}
	return id, true
}
