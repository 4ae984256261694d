package service

import (
	"context"
	"fmt"

	"writespace-backend/internal/domains/user"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(ctx, u)
	return &dto, nil
}

// UpdateProfile đổi name, contact info và/hoặc avatar. Avatar mới được
// resize rồi upload; avatar cũ bị xoá best-effort sau khi DB đã cập nhật.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req user.UpdateProfileRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. MERGE TEXT FIELDS
	changed := false
	if req.Name != nil && *req.Name != u.Name {
		u.Name = *req.Name
		changed = true
	}
	if req.ContactInfo != nil && *req.ContactInfo != u.ContactInfo {
		u.ContactInfo = *req.ContactInfo
		changed = true
	}

	// 2. AVATAR
	var oldImage, uploaded *string
	if len(req.Image) > 0 {
		if _, err := s.images.ValidateImage(req.Image); err != nil {
			return nil, fmt.Errorf("%w: %v", user.ErrInvalidImage, err)
		}
		resized, err := s.images.ProcessAvatar(req.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", user.ErrInvalidImage, err)
		}

		key := fmt.Sprintf("%s%s.jpg", s.minio.ProfileFolder, uuid.NewString())
		if err := s.storage.Put(ctx, key, resized, "image/jpeg"); err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}

		oldImage = u.Image
		uploaded = &key
		u.Image = &key
		changed = true
	}

	if !changed {
		return nil, user.ErrNoChanges
	}

	// 3. PERSIST
	if err := s.repo.Update(ctx, u); err != nil {
		s.deleteObject(ctx, uploaded)
		return nil, err
	}

	if oldImage != nil {
		s.deleteObject(ctx, oldImage)
	}

	dto := s.toDTO(ctx, u)
	return &dto, nil
}

func (s *userService) deleteObject(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.storage.Delete(ctx, *key); err != nil {
		log.Warn().Err(err).Str("key", *key).Msg("Failed to delete object")
	}
}
