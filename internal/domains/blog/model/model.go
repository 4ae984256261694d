package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPublished Status = "Published"
	StatusArchived  Status = "Archived"
	StatusBlocked   Status = "Blocked"
	StatusDeleted   Status = "Deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusBlocked, StatusDeleted:
		return true
	}
	return false
}

// OwnerSettable reports whether an author may move a post into s.
// Blocked is reserved for moderation.
func (s Status) OwnerSettable() bool {
	return s.Valid() && s != StatusBlocked
}

var Categories = []string{
	"All", "Tech", "Lifestyle", "Education", "Health", "Travel", "Food",
	"Fashion", "Business", "Finance", "Sports", "Entertainment", "Gaming",
	"Science", "News", "Personal", "DIY", "Art", "Photography", "Parenting",
	"Relationships", "Spirituality", "Environment", "History", "Books",
}

func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Blog là domain entity - ánh xạ với bảng blogs
type Blog struct {
	ID          uuid.UUID
	BlogID      string // human-readable, "ID" + 10 chars
	Title       string
	Description string
	Category    string
	Status      Status

	// Images holds object names relative to the blog folder, in display order.
	Images []string

	UserID       uuid.UUID
	LikeCount    int
	DislikeCount int
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Author is populated by read queries that join users.
	Author *Author
}

// Author is the slice of the owning user a post is rendered with.
type Author struct {
	ID          uuid.UUID
	Name        string
	Email       string
	ContactInfo string
	Image       *string // avatar object key
}

func (b *Blog) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Page is a normalized pagination window.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 3
	MaxPageLimit     = 50

	// MaxPage keeps Offset inside Postgres' int4 range for every limit.
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// NewPage clamps page to [1, MaxPage] and limit to [1, MaxPageLimit],
// defaulting limit to DefaultPageLimit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Page) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
