package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"postboard/internal/service"
)

type PostHandler struct {
	postService *service.PostService
	logger      *zap.Logger
}

func NewPostHandler(postService *service.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

func (h *PostHandler) serverError(c *gin.Context, op string, err error) {
	h.logger.Error("Post operation failed", zap.String("operation", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong!"})
}

// GetPosts handles GET /api/posts/all-posts?page=N.
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))

	posts, err := h.postService.List(c.Request.Context(), page)
	if err != nil {
		h.serverError(c, "getPosts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts})
}

// SinglePost handles GET /api/posts/single-post?_id=ID. An unknown id
// yields a 200 with null data.
func (h *PostHandler) SinglePost(c *gin.Context) {
	id := c.Query("_id")

	p, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, "singlePost", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "single post", "data": p})
}

// CreatePost handles POST /api/posts/create-post.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	claims := MustClaims(c)
	p, err := h.postService.Create(c.Request.Context(), req.Title, req.Description, claims.UserID)
	if err != nil {
		if validationError(c, err) {
			return
		}
		h.serverError(c, "createPost", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Post created successfully", "data": p})
}

// UpdatePost handles PUT /api/posts/update-post?_id=ID.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id := c.Query("_id")

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid request body!"})
		return
	}

	claims := MustClaims(c)
	p, err := h.postService.Update(c.Request.Context(), id, req.Title, req.Description, claims.UserID)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized!"})
		default:
			h.serverError(c, "updatePost", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Post Updated successfully", "data": p})
}

// DeletePost handles DELETE /api/posts/delete-post?_id=ID.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := c.Query("_id")

	claims := MustClaims(c)
	err := h.postService.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized!"})
		default:
			h.serverError(c, "deletePost", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Post Deleted successfully"})
}
