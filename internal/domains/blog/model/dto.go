package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ========================================
// REQUEST DTOs
// ========================================

// ImageUpload is one file taken from the multipart form.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreateBlogRequest struct {
	Title       string
	Description string
	Category    string
	Status      Status
	Images      []ImageUpload
}

func (r CreateBlogRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, titleRules()...),
		validation.Field(&r.Description, descriptionRules()...),
		validation.Field(&r.Category, categoryRules()...),
		validation.Field(&r.Status,
			validation.Required.Error("Status is required"),
			validation.By(ownerStatus),
		),
	)
}

// UpdateBlogRequest: nil fields are left unchanged.
type UpdateBlogRequest struct {
	Title       *string
	Description *string
	Category    *string
	Status      *Status

	// ExistingImages nil means the form did not send the field.
	ExistingImages *[]string
	DeletedImages  []string
	Images         []ImageUpload

	// Version, when set, must match the stored version.
	Version *int
}

func (r UpdateBlogRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.When(r.Title != nil, titleRules()...)),
		validation.Field(&r.Description, validation.When(r.Description != nil, descriptionRules()...)),
		validation.Field(&r.Category, validation.When(r.Category != nil, categoryRules()...)),
		validation.Field(&r.Status, validation.When(r.Status != nil, validation.By(ownerStatus))),
	)
}

// ImageInputSupplied reports whether the request touches the image list at all.
func (r UpdateBlogRequest) ImageInputSupplied() bool {
	return r.ExistingImages != nil || len(r.DeletedImages) > 0 || len(r.Images) > 0
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("Status is required"),
			validation.By(ownerStatus),
		),
	)
}

type ListBlogsRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

type AISuggestionRequest struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

var (
	onlyLetters = regexp.MustCompile(`^[a-zA-Z]+$`)
	onlyDigits  = regexp.MustCompile(`^\d+$`)
	onlySymbols = regexp.MustCompile(`^[^\w\s]+$`)
)

func (r AISuggestionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt,
			validation.Required.Error("Prompts can't be empty"),
			validation.By(meaningfulPrompt),
		),
		validation.Field(&r.Category,
			validation.Required.Error("Category is required"),
			validation.In(toInterfaces(Categories)...).Error("Invalid blog category. Only blog-related content can be generated."),
		),
	)
}

func meaningfulPrompt(value interface{}) error {
	p := strings.TrimSpace(value.(string))
	if p == "" {
		return nil
	}
	if onlyLetters.MatchString(p) || onlyDigits.MatchString(p) || onlySymbols.MatchString(p) ||
		len(strings.Fields(p)) <= 2 {
		return ErrPromptInvalid
	}
	return nil
}

func titleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Title is required"),
		validation.By(trimmedLength(10, 200, "Title must be between 10 and 200 characters")),
	}
}

func descriptionRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Description is required"),
		validation.By(trimmedLength(1000, 200000, "Description must be between 1000 and 200000 characters")),
	}
}

func categoryRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Category is required"),
		validation.In(toInterfaces(Categories)...).Error("Please select a valid category"),
	}
}

func trimmedLength(min, max int, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		}
		n := len([]rune(strings.TrimSpace(s)))
		if n < min || n > max {
			return validation.NewError("validation_length_out_of_range", msg)
		}
		return nil
	}
}

func ownerStatus(value interface{}) error {
	var s Status
	switch v := value.(type) {
	case Status:
		s = v
	case *Status:
		if v == nil {
			return nil
		}
		s = *v
	}
	if s == "" {
		return nil
	}
	if !s.OwnerSettable() {
		return ErrInvalidStatus
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// ========================================
// RESPONSE DTOs
// ========================================

type AuthorResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ContactInfo string    `json:"contactinfo"`
	Image       string    `json:"image,omitempty"`
}

type BlogResponse struct {
	ID           uuid.UUID       `json:"id"`
	BlogID       string          `json:"blogId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Status       Status          `json:"status"`
	ImageURLs    []string        `json:"imageUrl"`
	Author       *AuthorResponse `json:"author,omitempty"`
	LikeCount    int             `json:"likeCount"`
	DislikeCount int             `json:"dislikeCount"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ToResponse copies metadata only; image and avatar URLs are signed by the
// service.
func (b *Blog) ToResponse() BlogResponse {
	res := BlogResponse{
		ID:           b.ID,
		BlogID:       b.BlogID,
		Title:        b.Title,
		Description:  b.Description,
		Category:     b.Category,
		Status:       b.Status,
		ImageURLs:    []string{},
		LikeCount:    b.LikeCount,
		DislikeCount: b.DislikeCount,
		Version:      b.Version,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Author != nil {
		res.Author = &AuthorResponse{
			ID:          b.Author.ID,
			Name:        b.Author.Name,
			Email:       b.Author.Email,
			ContactInfo: b.Author.ContactInfo,
		}
	}
	return res
}

type ListBlogsResponse struct {
	Blogs       []BlogResponse `json:"blogs"`
	Total       int            `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type AISuggestionResponse struct {
	Content string `json:"content"`
}
