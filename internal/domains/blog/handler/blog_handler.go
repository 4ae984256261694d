package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/domains/blog/service"
	"writespace-backend/internal/infrastructure/storage"
	"writespace-backend/internal/shared/middleware"
	"writespace-backend/internal/shared/response"
	"writespace-backend/internal/shared/utils"
)

type BlogHandler struct {
	service service.ServiceInterface
}

func NewBlogHandler(s service.ServiceInterface) *BlogHandler {
	return &BlogHandler{service: s}
}

// CreateBlog xử lý POST /create-blog (multipart)
func (h *BlogHandler) CreateBlog(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	// STEP 1: PARSE FORM
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Invalid multipart form")
		return
	}
	images, err := readImages(form.File["images"])
	if err != nil {
		h.handleError(c, err)
		return
	}

	req := model.CreateBlogRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Status:      model.Status(c.PostForm("status")),
		Images:      images,
	}

	// STEP 2: CALL SERVICE
	blog, err := h.service.CreateBlog(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Blog created successfully", gin.H{"blog": blog})
}

// EditBlog xử lý PUT /edit-blog/:id (multipart)
func (h *BlogHandler) EditBlog(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Invalid multipart form")
		return
	}
	images, err := readImages(form.File["images"])
	if err != nil {
		h.handleError(c, err)
		return
	}

	req := model.UpdateBlogRequest{
		Title:         optionalForm(c, "title"),
		Description:   optionalForm(c, "description"),
		Category:      optionalForm(c, "category"),
		DeletedImages: model.ParseImageKeys(c.PostForm("deletedImages")),
		Images:        images,
	}
	if s := optionalForm(c, "status"); s != nil {
		status := model.Status(*s)
		req.Status = &status
	}
	// An empty existingImages field is treated as not sent
	if raw := c.PostForm("existingImages"); strings.TrimSpace(raw) != "" {
		keys := model.ParseImageKeys(raw)
		req.ExistingImages = &keys
	}
	if raw := c.PostForm("version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "version must be an integer")
			return
		}
		req.Version = &v
	}

	blog, err := h.service.UpdateBlog(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Blog updated successfully", gin.H{"blog": blog})
}

// UpdateStatus xử lý PATCH /blogs/:blogId/status
func (h *BlogHandler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	blog, err := h.service.UpdateStatus(c.Request.Context(), userID, c.Param("blogId"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Blog status updated", gin.H{"blog": blog})
}

// ListUserBlogs xử lý GET /blogs
func (h *BlogHandler) ListUserBlogs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.ListBlogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.ListUserBlogs(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blogs retrieved", res)
}

// ListPublishedBlogs xử lý GET /all-blogs (public)
func (h *BlogHandler) ListPublishedBlogs(c *gin.Context) {
	var req model.ListBlogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.ListPublishedBlogs(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blogs retrieved", res)
}

// AISuggestion xử lý POST /ai-suggestion
func (h *BlogHandler) AISuggestion(c *gin.Context) {
	var req model.AISuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.service.SuggestContent(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Content generated", res)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

func optionalForm(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func readImages(files []*multipart.FileHeader) ([]model.ImageUpload, error) {
	if len(files) > model.MaxImagesPerPost {
		return nil, model.ErrTooManyImages
	}
	out := make([]model.ImageUpload, 0, len(files))
	for _, fh := range files {
		data, err := utils.ReadFormFile(fh, storage.DefaultMaxImageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return out, nil
}

func (h *BlogHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors

	switch {
	// 400
	case errors.As(err, &verrs):
		response.ValidationError(c, verrs)
	case errors.Is(err, model.ErrImagesRequired),
		errors.Is(err, model.ErrTooManyImages),
		errors.Is(err, model.ErrInvalidImage),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrGeneratedTooShort),
		errors.Is(err, utils.ErrFileTooLarge):
		response.BadRequest(c, err.Error())

	// 403
	case errors.Is(err, model.ErrNotOwner),
		errors.Is(err, model.ErrBlogBlocked):
		response.Forbidden(c, err.Error())

	// 404
	case errors.Is(err, model.ErrBlogNotFound):
		response.NotFound(c, err.Error())

	// 409
	case errors.Is(err, model.ErrVersionConflict):
		response.Conflict(c, err.Error())

	// 503
	case errors.Is(err, model.ErrSuggestionDisabled):
		response.ErrorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error())

	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("path", c.FullPath()).
			Msg("Unhandled blog error")
		if errors.Is(err, model.ErrImageUpload) {
			response.InternalServerError(c, model.ErrImageUpload.Error())
			return
		}
		response.InternalServerError(c, "Internal server error")
	}
}
