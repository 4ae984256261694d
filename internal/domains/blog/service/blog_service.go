package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"writespace-backend/internal/config"
	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/domains/blog/repository"
	"writespace-backend/internal/infrastructure/ai"
	"writespace-backend/internal/infrastructure/storage"
	"writespace-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const blogIDAttempts = 3

type blogService struct {
	repo      repository.Repository
	storage   storage.ObjectStore
	images    *storage.ImageProcessor
	generator ai.Generator

	blogFolder string
	signTTL    time.Duration
	fanOut     int
}

func NewBlogService(
	repo repository.Repository,
	store storage.ObjectStore,
	images *storage.ImageProcessor,
	generator ai.Generator,
	cfg config.MinIOConfig,
) ServiceInterface {
	if images == nil {
		images = storage.NewImageProcessor()
	}
	return &blogService{
		repo:       repo,
		storage:    store,
		images:     images,
		generator:  generator,
		blogFolder: cfg.BlogFolder,
		signTTL:    cfg.SignedURLTTL,
		fanOut:     utils.DefaultFanOutLimit,
	}
}

// ============================================
// CREATE
// ============================================

// CreateBlog - upload 1..2 ảnh song song rồi mới ghi DB.
// Upload lỗi → xoá các ảnh đã lên, không tạo post.
func (s *blogService) CreateBlog(ctx context.Context, userID uuid.UUID, req model.CreateBlogRequest) (*model.BlogResponse, error) {
	// 1. VALIDATE
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Images) == 0 {
		return nil, model.ErrImagesRequired
	}
	if len(req.Images) > model.MaxImagesPerPost {
		return nil, model.ErrTooManyImages
	}
	contentTypes, err := s.validateImages(req.Images)
	if err != nil {
		return nil, err
	}

	// 2. UPLOAD
	names, err := s.uploadImages(ctx, req.Images, contentTypes)
	if err != nil {
		return nil, err
	}

	// 3. PERSIST
	blog := &model.Blog{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		Images:      names,
		UserID:      userID,
	}
	if err := s.createWithUniqueID(ctx, blog); err != nil {
		s.deleteImages(ctx, names)
		return nil, err
	}

	log.Info().
		Str("blog_id", blog.BlogID).
		Str("user_id", userID.String()).
		Int("images", len(names)).
		Msg("Blog created")

	// Reload to get the author for the response
	if loaded, err := s.repo.FindByRef(ctx, blog.ID.String()); err == nil {
		blog = loaded
	}
	res := s.render(ctx, []model.Blog{*blog})[0]
	return &res, nil
}

func (s *blogService) createWithUniqueID(ctx context.Context, blog *model.Blog) error {
	for attempt := 0; attempt < blogIDAttempts; attempt++ {
		suffix, err := utils.RandomUpperAlnum(10)
		if err != nil {
			return fmt.Errorf("generate blog id: %w", err)
		}
		blog.BlogID = "ID" + suffix

		err = s.repo.Create(ctx, blog)
		if !errors.Is(err, model.ErrDuplicateBlogID) {
			return err
		}
	}
	return fmt.Errorf("create blog: %w", model.ErrDuplicateBlogID)
}

// ============================================
// UPDATE (image reconciliation)
// ============================================

// UpdateBlog merges provided fields and reconciles the image list:
// final = (retained − deleted) ++ uploaded. Objects dropped from the post
// are deleted only after the new metadata is stored.
func (s *blogService) UpdateBlog(ctx context.Context, userID uuid.UUID, ref string, req model.UpdateBlogRequest) (*model.BlogResponse, error) {
	// 1. LOAD + OWNERSHIP (no object-store calls before this passes)
	blog, err := s.loadOwned(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	// 2. VALIDATE
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Images) > model.MaxImagesPerPost {
		return nil, model.ErrTooManyImages
	}
	expectedVersion := blog.Version
	if req.Version != nil {
		if *req.Version != blog.Version {
			return nil, model.ErrVersionConflict
		}
		expectedVersion = *req.Version
	}
	contentTypes, err := s.validateImages(req.Images)
	if err != nil {
		return nil, err
	}

	// 3. UPLOAD NEW FILES
	uploaded, err := s.uploadImages(ctx, req.Images, contentTypes)
	if err != nil {
		return nil, err
	}

	// 4. RECONCILE
	var removed []string
	if req.ImageInputSupplied() {
		plan := model.ReconcileImages(blog.Images, req.ExistingImages, req.DeletedImages, uploaded)
		if len(plan.Final) == 0 {
			s.deleteImages(ctx, uploaded)
			return nil, model.ErrImagesRequired
		}
		blog.Images = plan.Final
		removed = plan.Removed
	}

	// 5. MERGE FIELDS + PERSIST
	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Description != nil {
		blog.Description = *req.Description
	}
	if req.Category != nil {
		blog.Category = *req.Category
	}
	if req.Status != nil {
		blog.Status = *req.Status
	}
	if err := s.repo.Update(ctx, blog, expectedVersion); err != nil {
		s.deleteImages(ctx, uploaded)
		return nil, err
	}

	// 6. BEST-EFFORT CLEANUP
	s.deleteImages(ctx, removed)

	res := s.render(ctx, []model.Blog{*blog})[0]
	return &res, nil
}

// ============================================
// STATUS
// ============================================

func (s *blogService) UpdateStatus(ctx context.Context, userID uuid.UUID, ref string, req model.UpdateStatusRequest) (*model.BlogResponse, error) {
	blog, err := s.loadOwned(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, blog.ID, req.Status); err != nil {
		return nil, err
	}
	blog.Status = req.Status
	blog.Version++

	res := s.render(ctx, []model.Blog{*blog})[0]
	return &res, nil
}

// loadOwned returns the post if userID may mutate it. Deleted posts are
// treated as gone; Blocked posts are frozen for their owner.
func (s *blogService) loadOwned(ctx context.Context, userID uuid.UUID, ref string) (*model.Blog, error) {
	blog, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if blog.Status == model.StatusDeleted {
		return nil, model.ErrBlogNotFound
	}
	if !blog.OwnedBy(userID) {
		return nil, model.ErrNotOwner
	}
	if blog.Status == model.StatusBlocked {
		return nil, model.ErrBlogBlocked
	}
	return blog, nil
}

// ============================================
// LIST
// ============================================

func (s *blogService) ListUserBlogs(ctx context.Context, userID uuid.UUID, req model.ListBlogsRequest) (*model.ListBlogsResponse, error) {
	page := model.NewPage(req.Page, req.Limit)
	blogs, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, blogs, total, page), nil
}

func (s *blogService) ListPublishedBlogs(ctx context.Context, req model.ListBlogsRequest) (*model.ListBlogsResponse, error) {
	page := model.NewPage(req.Page, req.Limit)
	blogs, total, err := s.repo.ListPublished(ctx, req.Search, page)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, blogs, total, page), nil
}

func (s *blogService) listResponse(ctx context.Context, blogs []model.Blog, total int, page model.Page) *model.ListBlogsResponse {
	return &model.ListBlogsResponse{
		Blogs:       s.render(ctx, blogs),
		Total:       total,
		TotalPages:  page.TotalPages(total),
		CurrentPage: page.Page,
	}
}
