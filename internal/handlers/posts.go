package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/service"

	"github.com/gin-gonic/gin"
)

const msgEmptyPost = "Post content cannot be empty"

func (h *Handler) createPost(c *gin.Context, id service.Identity) {
	content := c.PostForm("content")

	_, err := h.services.CreatePost(c.Request.Context(), id, content)
	if errors.Is(err, service.ErrValidation) {
		h.renderProfile(c, id, http.StatusBadRequest, msgEmptyPost)
		return
	}
	if h.handleServiceErr(c, "post_create", err) {
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) deletePost(c *gin.Context, id service.Identity) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	if h.handleServiceErr(c, "post_delete", h.services.DeletePost(c.Request.Context(), id, postID)) {
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) editForm(c *gin.Context, id service.Identity) {
	h.renderEdit(c, id, http.StatusOK, "")
}

func (h *Handler) editPost(c *gin.Context, id service.Identity) {
	postID, ok := pathID(c)
	if !ok {
		return
	}

	err := h.services.UpdatePost(c.Request.Context(), id, postID, c.PostForm("content"))
	if errors.Is(err, service.ErrValidation) {
		h.renderEdit(c, id, http.StatusBadRequest, msgEmptyPost)
		return
	}
	if h.handleServiceErr(c, "post_edit", err) {
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

// renderEdit shows the edit form, re-checking ownership on every render.
func (h *Handler) renderEdit(c *gin.Context, id service.Identity, status int, msg string) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	post, err := h.services.GetOwnedPost(c.Request.Context(), id, postID)
	if h.handleServiceErr(c, "post_load", err) {
		return
	}
	c.HTML(status, "edit.html", gin.H{"title": "Edit post", "post": post, "error": msg})
}
