package repository

import (
	"context"

	"writespace-backend/internal/domains/blog/model"

	"github.com/google/uuid"
)

// Repository - Định nghĩa data access methods cho blogs
type Repository interface {
	// Create sets ID, Version and timestamps on b.
	// Returns: model.ErrDuplicateBlogID nếu blog_id trùng
	Create(ctx context.Context, b *model.Blog) error

	// FindByRef tìm theo uuid id hoặc blog_id, kèm Author.
	// Returns: model.ErrBlogNotFound
	FindByRef(ctx context.Context, ref string) (*model.Blog, error)

	// Update ghi metadata + images nếu version khớp, rồi tăng version.
	// Returns: model.ErrVersionConflict
	Update(ctx context.Context, b *model.Blog, expectedVersion int) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error

	// ListByUser: mọi post của owner trừ Deleted, mới nhất trước
	ListByUser(ctx context.Context, userID uuid.UUID, page model.Page) ([]model.Blog, int, error)

	// ListPublished: chỉ Published, search ILIKE theo title/category
	ListPublished(ctx context.Context, search string, page model.Page) ([]model.Blog, int, error)
}
