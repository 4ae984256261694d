package model

import (
	"net/url"
	"strings"

	"writespace-backend/internal/shared/utils"
)

const MaxImagesPerPost = 2

// ExtractImageKey turns a (possibly signed) image URL back into the object
// name stored on the post: query and fragment are dropped and the trailing
// path segment is kept.
func ExtractImageKey(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	return s
}

// ParseImageKeys splits a comma-joined URL list into object names.
func ParseImageKeys(raw string) []string {
	parts := utils.SplitList(raw)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := ExtractImageKey(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ImagePlan is the outcome of reconciling a post's image list.
type ImagePlan struct {
	Final   []string // new image list, in order
	Removed []string // keys that were on the post and are no longer referenced
}

// ReconcileImages computes (base − deleted) ++ uploaded without duplicates.
// base is current when retained is nil, otherwise retained ∩ current; keys
// the post never had are ignored so a client cannot adopt foreign objects.
func ReconcileImages(current []string, retained *[]string, deleted, uploaded []string) ImagePlan {
	onPost := make(map[string]bool, len(current))
	for _, k := range current {
		onPost[k] = true
	}
	drop := make(map[string]bool, len(deleted))
	for _, k := range deleted {
		drop[k] = true
	}

	base := current
	if retained != nil {
		base = make([]string, 0, len(*retained))
		for _, k := range *retained {
			if onPost[k] {
				base = append(base, k)
			}
		}
	}

	seen := make(map[string]bool, len(base)+len(uploaded))
	final := make([]string, 0, len(base)+len(uploaded))
	for _, k := range base {
		if drop[k] || seen[k] {
			continue
		}
		seen[k] = true
		final = append(final, k)
	}
	for _, k := range uploaded {
		if seen[k] {
			continue
		}
		seen[k] = true
		final = append(final, k)
	}

	var removed []string
	for _, k := range current {
		if !seen[k] {
			removed = append(removed, k)
		}
	}

	return ImagePlan{Final: final, Removed: removed}
}
