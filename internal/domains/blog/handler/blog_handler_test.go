package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/domains/blog/service"
	"writespace-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	service.ServiceInterface
	update func(ref string, req model.UpdateBlogRequest) (*model.BlogResponse, error)
	create func(req model.CreateBlogRequest) (*model.BlogResponse, error)
}

func (s *stubService) UpdateBlog(_ context.Context, _ uuid.UUID, ref string, req model.UpdateBlogRequest) (*model.BlogResponse, error) {
	return s.update(ref, req)
}

func (s *stubService) CreateBlog(_ context.Context, _ uuid.UUID, req model.CreateBlogRequest) (*model.BlogResponse, error) {
	return s.create(req)
}

func newRouter(svc service.ServiceInterface) *gin.Engine {
	h := NewBlogHandler(svc)
	r := gin.New()
	authed := func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, uuid.New())
		c.Next()
	}
	r.POST("/create-blog", authed, h.CreateBlog)
	r.PUT("/edit-blog/:id", authed, h.EditBlog)
	return r
}

type part struct {
	field, filename, value string
}

func multipartRequest(t *testing.T, method, url string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := mw.CreateFormFile(p.field, p.filename)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.field, p.value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestEditBlog_ParsesForm(t *testing.T) {
	var gotRef string
	var got model.UpdateBlogRequest
	r := newRouter(&stubService{update: func(ref string, req model.UpdateBlogRequest) (*model.BlogResponse, error) {
		gotRef, got = ref, req
		return &model.BlogResponse{BlogID: "IDABCDEFGHIJ"}, nil
	}})

	req := multipartRequest(t, http.MethodPut, "/edit-blog/IDABCDEFGHIJ",
		part{field: "title", value: "A brand new title here"},
		part{field: "existingImages", value: "https://s3/b/A.png?sig=1,https://s3/b/B.png?sig=2"},
		part{field: "deletedImages", value: "https://s3/b/A.png?sig=1"},
		part{field: "version", value: "3"},
		part{field: "images", filename: "c.png", value: "png-bytes"},
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IDABCDEFGHIJ", gotRef)
	require.NotNil(t, got.Title)
	assert.Equal(t, "A brand new title here", *got.Title)
	assert.Nil(t, got.Description)
	require.NotNil(t, got.ExistingImages)
	assert.Equal(t, []string{"A.png", "B.png"}, *got.ExistingImages)
	assert.Equal(t, []string{"A.png"}, got.DeletedImages)
	require.NotNil(t, got.Version)
	assert.Equal(t, 3, *got.Version)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "c.png", got.Images[0].Filename)
}

func TestEditBlog_EmptyExistingImagesKeepsCurrentSet(t *testing.T) {
	tests := []struct {
		name  string
		parts []part
	}{
		{"field absent", []part{{field: "title", value: "A brand new title here"}}},
		{"field empty", []part{{field: "existingImages", value: ""}}},
		{"field blank", []part{{field: "existingImages", value: "  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.UpdateBlogRequest
			called := false
			r := newRouter(&stubService{update: func(_ string, req model.UpdateBlogRequest) (*model.BlogResponse, error) {
				called, got = true, req
				return &model.BlogResponse{}, nil
			}})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, http.MethodPut, "/edit-blog/x", tt.parts...))

			require.Equal(t, http.StatusOK, w.Code)
			require.True(t, called)
			assert.Nil(t, got.ExistingImages)
		})
	}
}

func TestEditBlog_BadVersion(t *testing.T) {
	r := newRouter(&stubService{})

	req := multipartRequest(t, http.MethodPut, "/edit-blog/x", part{field: "version", value: "abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditBlog_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrImagesRequired, http.StatusBadRequest},
		{model.ErrNotOwner, http.StatusForbidden},
		{model.ErrBlogBlocked, http.StatusForbidden},
		{model.ErrBlogNotFound, http.StatusNotFound},
		{model.ErrVersionConflict, http.StatusConflict},
		{model.ErrImageUpload, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newRouter(&stubService{update: func(string, model.UpdateBlogRequest) (*model.BlogResponse, error) {
				return nil, tt.err
			}})
			req := multipartRequest(t, http.MethodPut, "/edit-blog/x", part{field: "title", value: "whatever title"})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCreateBlog_TooManyFiles(t *testing.T) {
	called := false
	r := newRouter(&stubService{create: func(model.CreateBlogRequest) (*model.BlogResponse, error) {
		called = true
		return nil, nil
	}})

	req := multipartRequest(t, http.MethodPost, "/create-blog",
		part{field: "images", filename: "a.png", value: "1"},
		part{field: "images", filename: "b.png", value: "2"},
		part{field: "images", filename: "c.png", value: "3"},
	)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}
