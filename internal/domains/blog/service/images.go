package service

import (
	"context"
	"fmt"

	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func (s *blogService) objectKey(name string) string {
	return s.blogFolder + name
}

func (s *blogService) validateImages(images []model.ImageUpload) ([]string, error) {
	contentTypes := make([]string, len(images))
	for i, img := range images {
		ct, err := s.images.ValidateImage(img.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidImage, img.Filename, err)
		}
		contentTypes[i] = ct
	}
	return contentTypes, nil
}

type uploadJob struct {
	name        string
	data        []byte
	contentType string
}

// uploadImages puts every image concurrently and returns the stored names in
// input order. If any upload fails the successful ones are deleted again.
func (s *blogService) uploadImages(ctx context.Context, images []model.ImageUpload, contentTypes []string) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}

	jobs := make([]uploadJob, len(images))
	for i, img := range images {
		jobs[i] = uploadJob{
			name:        uuid.NewString() + "-" + utils.SanitizeFileName(img.Filename),
			data:        img.Data,
			contentType: contentTypes[i],
		}
	}

	results := utils.SettleAll(ctx, jobs, s.fanOut, func(ctx context.Context, j uploadJob) (string, error) {
		if err := s.storage.Put(ctx, s.objectKey(j.name), j.data, j.contentType); err != nil {
			return "", err
		}
		return j.name, nil
	})

	names := make([]string, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("name", jobs[i].name).Msg("Blog image upload failed")
			continue
		}
		names = append(names, r.Value)
	}

	if failed := utils.FirstError(results); failed != nil {
		s.deleteImages(ctx, names)
		return nil, fmt.Errorf("%w: %v", model.ErrImageUpload, failed)
	}
	return names, nil
}

// deleteImages is best-effort: failures are logged and leave orphans behind.
func (s *blogService) deleteImages(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}
	results := utils.SettleAll(ctx, names, s.fanOut, func(ctx context.Context, name string) (struct{}, error) {
		return struct{}{}, s.storage.Delete(ctx, s.objectKey(name))
	})
	for i, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("name", names[i]).Msg("Failed to delete blog image")
		}
	}
}

type signJob struct {
	blog   int // index into blogs, -1 for avatars
	key    string
	author uuid.UUID
}

// render converts blogs to responses, signing every image and every
// distinct author avatar in one fan-out. A failed signature drops only that
// URL.
func (s *blogService) render(ctx context.Context, blogs []model.Blog) []model.BlogResponse {
	out := make([]model.BlogResponse, len(blogs))
	var jobs []signJob
	avatars := map[uuid.UUID]bool{}

	for i := range blogs {
		out[i] = blogs[i].ToResponse()
		for _, name := range blogs[i].Images {
			jobs = append(jobs, signJob{blog: i, key: s.objectKey(name)})
		}
		a := blogs[i].Author
		if a != nil && a.Image != nil && *a.Image != "" && !avatars[a.ID] {
			avatars[a.ID] = true
			jobs = append(jobs, signJob{blog: -1, key: *a.Image, author: a.ID})
		}
	}

	results := utils.SettleAll(ctx, jobs, s.fanOut, func(ctx context.Context, j signJob) (string, error) {
		return s.storage.SignedGetURL(ctx, j.key, s.signTTL)
	})

	signedAvatars := map[uuid.UUID]string{}
	for i, r := range results {
		j := jobs[i]
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("key", j.key).Msg("Failed to sign image URL")
			continue
		}
		if j.blog < 0 {
			signedAvatars[j.author] = r.Value
			continue
		}
		out[j.blog].ImageURLs = append(out[j.blog].ImageURLs, r.Value)
	}

	for i := range out {
		if out[i].Author != nil {
			out[i].Author.Image = signedAvatars[out[i].Author.ID]
		}
	}
	return out
}
