package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/metrics"
	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgFillRequired    = "Please fill all required fields"
	msgEmailTaken      = "Email already exists!"
	msgUsernameTaken   = "Username already taken"
	msgBadCredentials  = "Username or Password was incorrect"
	msgSomethingFailed = "Something went wrong"
)

type loginInput struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (h *Handler) registerForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"title": "Register", "form": service.RegisterInput{}})
}

func (h *Handler) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"title": "Log in", "email": ""})
}

func (h *Handler) register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.renderRegister(c, http.StatusBadRequest, msgFillRequired, in)
		return
	}

	token, err := h.services.SignUp(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			h.opts.Metrics.AuthAttempt(metrics.OpRegister, metrics.OutcomeRejected)
			h.renderRegister(c, http.StatusBadRequest, msgFillRequired, in)
		case errors.Is(err, service.ErrDuplicateEmail):
			h.opts.Metrics.AuthAttempt(metrics.OpRegister, metrics.OutcomeDuplicate)
			h.renderRegister(c, http.StatusBadRequest, msgEmailTaken, in)
		case errors.Is(err, service.ErrDuplicateUsername):
			h.opts.Metrics.AuthAttempt(metrics.OpRegister, metrics.OutcomeDuplicate)
			h.renderRegister(c, http.StatusBadRequest, msgUsernameTaken, in)
		default:
			h.opts.Metrics.AuthAttempt(metrics.OpRegister, metrics.OutcomeError)
			if h.log != nil {
				h.log.Errorw("auth_sign_up_failed", "err", err)
			}
			h.renderRegister(c, http.StatusInternalServerError, msgSomethingFailed, in)
		}
		return
	}

	h.opts.Metrics.AuthAttempt(metrics.OpRegister, metrics.OutcomeSuccess)
	h.setTokenCookie(c, token)
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBind(&in); err != nil {
		h.opts.Metrics.AuthAttempt(metrics.OpLogin, metrics.OutcomeRejected)
		h.renderLogin(c, http.StatusBadRequest, msgBadCredentials, in.Email)
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		status, msg := http.StatusBadRequest, msgBadCredentials
		outcome := metrics.OutcomeRejected
		if !errors.Is(err, service.ErrInvalidCredentials) {
			status, msg, outcome = http.StatusInternalServerError, msgSomethingFailed, metrics.OutcomeError
			if h.log != nil {
				h.log.Errorw("auth_sign_in_failed", "err", err)
			}
		}
		h.opts.Metrics.AuthAttempt(metrics.OpLogin, outcome)
		h.renderLogin(c, status, msg, in.Email)
		return
	}

	h.opts.Metrics.AuthAttempt(metrics.OpLogin, metrics.OutcomeSuccess)
	h.setTokenCookie(c, token)
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) logout(c *gin.Context) {
	h.clearTokenCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

// renderRegister re-renders the form without echoing the password back.
func (h *Handler) renderRegister(c *gin.Context, status int, msg string, in service.RegisterInput) {
	in.Password = ""
	c.HTML(status, "register.html", gin.H{"title": "Register", "error": msg, "form": in})
}

func (h *Handler) renderLogin(c *gin.Context, status int, msg, email string) {
	c.HTML(status, "login.html", gin.H{"title": "Log in", "error": msg, "email": email})
}
