package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImageKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"signed url", "https://cdn.example.com/write-space/blogs/abc-cat.jpg?X-Amz-Signature=zz", "abc-cat.jpg"},
		{"fragment", "http://host/b/key.png#frag", "key.png"},
		{"escaped", "http://host/b/my%20file.png", "my file.png"},
		{"bare key", "  plain.jpg ", "plain.jpg"},
		{"trailing slash", "http://host/b/key.png/", "key.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractImageKey(tt.raw))
		})
	}
}

func TestParseImageKeys(t *testing.T) {
	raw := "http://h/b/a.jpg?sig=1, ,http://h/b/b.png"
	assert.Equal(t, []string{"a.jpg", "b.png"}, ParseImageKeys(raw))
	assert.Empty(t, ParseImageKeys(""))
}

func TestReconcileImages(t *testing.T) {
	retained := func(keys ...string) *[]string { return &keys }

	tests := []struct {
		name        string
		current     []string
		retained    *[]string
		deleted     []string
		uploaded    []string
		wantFinal   []string
		wantRemoved []string
	}{
		{
			name:        "replace one image",
			current:     []string{"A", "B"},
			retained:    retained("A", "B"),
			deleted:     []string{"A"},
			uploaded:    []string{"C"},
			wantFinal:   []string{"B", "C"},
			wantRemoved: []string{"A"},
		},
		{
			name:      "retained not sent keeps current",
			current:   []string{"A", "B"},
			uploaded:  []string{"C"},
			wantFinal: []string{"A", "B", "C"},
		},
		{
			name:        "retained subset drops the rest",
			current:     []string{"A", "B"},
			retained:    retained("B"),
			wantFinal:   []string{"B"},
			wantRemoved: []string{"A"},
		},
		{
			name:      "duplicates collapse",
			current:   []string{"A"},
			retained:  retained("A", "A"),
			uploaded:  []string{"A"},
			wantFinal: []string{"A"},
		},
		{
			name:      "foreign keys ignored",
			current:   []string{"A"},
			retained:  retained("A", "X"),
			deleted:   []string{"Y"},
			wantFinal: []string{"A"},
		},
		{
			name:        "everything deleted",
			current:     []string{"A", "B"},
			deleted:     []string{"A", "B"},
			wantFinal:   []string{},
			wantRemoved: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := ReconcileImages(tt.current, tt.retained, tt.deleted, tt.uploaded)
			assert.Equal(t, tt.wantFinal, plan.Final)
			assert.Equal(t, tt.wantRemoved, plan.Removed)
		})
	}
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageLimit}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 2, Limit: MaxPageLimit}, NewPage(2, 500))

	p := NewPage(3, 10)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 3, p.TotalPages(21))
	assert.Equal(t, 0, p.TotalPages(0))

	huge := NewPage(math.MaxInt, MaxPageLimit)
	assert.Equal(t, MaxPage, huge.Page)
	assert.Positive(t, huge.Offset())
	assert.LessOrEqual(t, huge.Offset(), math.MaxInt32)
}

func TestStatus_OwnerSettable(t *testing.T) {
	assert.True(t, StatusPublished.OwnerSettable())
	assert.True(t, StatusDeleted.OwnerSettable())
	assert.False(t, StatusBlocked.OwnerSettable())
	assert.False(t, Status("Hidden").OwnerSettable())
}

func TestAISuggestionRequest_Validate(t *testing.T) {
	assert.Error(t, AISuggestionRequest{Prompt: "hello", Category: "Tech"}.Validate())
	assert.Error(t, AISuggestionRequest{Prompt: "two words", Category: "Tech"}.Validate())
	assert.Error(t, AISuggestionRequest{Prompt: "write about go concurrency", Category: "Cooking"}.Validate())
	assert.NoError(t, AISuggestionRequest{Prompt: "write about go concurrency", Category: "Tech"}.Validate())
}
