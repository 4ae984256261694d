package model

import "errors"

var (
	ErrBlogNotFound    = errors.New("Blog not found")
	ErrNotOwner        = errors.New("Unauthorized to edit this post")
	ErrBlogBlocked     = errors.New("This post has been blocked and cannot be changed")
	ErrVersionConflict = errors.New("Blog was modified by another request, please reload")
	ErrDuplicateBlogID = errors.New("blog id already exists")

	ErrImagesRequired = errors.New("At least one image is required")
	ErrTooManyImages  = errors.New("A post can have at most 2 images")
	ErrInvalidImage   = errors.New("Invalid image file")
	ErrInvalidStatus  = errors.New("Please select a valid status")

	ErrImageUpload = errors.New("Failed to upload images")

	// AI suggestion
	ErrPromptInvalid      = errors.New("The prompt does not appear to be suitable for generating blog content.")
	ErrGeneratedTooShort  = errors.New("Generated content is too short")
	ErrSuggestionDisabled = errors.New("AI suggestions are not available")
)
