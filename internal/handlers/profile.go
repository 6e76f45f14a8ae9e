package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	avatarField = "image"
	// room for the text fields and multipart framing on top of the avatar itself
	formOverheadBytes = 1 << 20

	msgAvatarTooLarge = "Image is too large"
)

func (h *Handler) profile(c *gin.Context, id service.Identity) {
	h.renderProfile(c, id, http.StatusOK, "")
}

func (h *Handler) renderProfile(c *gin.Context, id service.Identity, status int, msg string) {
	u, err := h.services.Me(c.Request.Context(), id)
	if h.handleServiceErr(c, "profile_load", err) {
		return
	}
	c.HTML(status, "profile.html", gin.H{"title": u.Username, "user": u, "error": msg})
}

func (h *Handler) profileForm(c *gin.Context, id service.Identity) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	h.renderProfileForm(c, id, targetID, http.StatusOK, "")
}

func (h *Handler) renderProfileForm(c *gin.Context, id service.Identity, targetID int64, status int, msg string) {
	u, err := h.services.ProfileForm(c.Request.Context(), id, targetID)
	if h.handleServiceErr(c, "profile_form", err) {
		return
	}
	c.HTML(status, "profile_edit.html", gin.H{"title": "Edit profile", "user": u, "error": msg})
}

func (h *Handler) updateProfile(c *gin.Context, id service.Identity) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit())
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderProfileForm(c, id, targetID, http.StatusRequestEntityTooLarge, msgAvatarTooLarge)
			return
		}
		if h.log != nil {
			h.log.Warnw("profile_form_unreadable", "err", err)
		}
	}

	upd := service.ProfileUpdate{FullName: c.PostForm("fullname")}

	fh, err := c.FormFile(avatarField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		if h.log != nil {
			h.log.Warnw("avatar_form_unreadable", "err", err)
		}
	default:
		f, err := fh.Open()
		if err != nil {
			if h.log != nil {
				h.log.Warnw("avatar_open_failed", "err", err)
			}
			break
		}
		defer f.Close()
		upd.Avatar = &service.AvatarUpload{Filename: fh.Filename, Size: fh.Size, Body: f}
	}

	_, err = h.services.UpdateProfile(c.Request.Context(), id, targetID, upd)
	if h.handleServiceErr(c, "profile_update", err) {
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

// uploadLimit caps the whole profile update body.
func (h *Handler) uploadLimit() int64 {
	limit := h.opts.MaxAvatarBytes
	if limit <= 0 {
		limit = service.DefaultMaxAvatarBytes
	}
	return limit + formOverheadBytes
}
