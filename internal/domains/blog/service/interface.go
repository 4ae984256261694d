package service

import (
	"context"

	"writespace-backend/internal/domains/blog/model"

	"github.com/google/uuid"
)

// ServiceInterface - Định nghĩa business logic methods
type ServiceInterface interface {
	CreateBlog(ctx context.Context, userID uuid.UUID, req model.CreateBlogRequest) (*model.BlogResponse, error)
	UpdateBlog(ctx context.Context, userID uuid.UUID, ref string, req model.UpdateBlogRequest) (*model.BlogResponse, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, ref string, req model.UpdateStatusRequest) (*model.BlogResponse, error)
	ListUserBlogs(ctx context.Context, userID uuid.UUID, req model.ListBlogsRequest) (*model.ListBlogsResponse, error)
	ListPublishedBlogs(ctx context.Context, req model.ListBlogsRequest) (*model.ListBlogsResponse, error)
	SuggestContent(ctx context.Context, req model.AISuggestionRequest) (*model.AISuggestionResponse, error)
}
