package utils

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-+`)
)

// GenerateSlug lowercases input, strips accents and keeps only [a-z0-9-].
//
//	"Ảnh bìa Đẹp!" -> "anh-bia-dep"
func GenerateSlug(input string) string {
	ascii := RemoveDiacritics(input)
	lower := strings.ToLower(ascii)
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	normalized := repeatedHyphen.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// SanitizeFileName turns an uploaded file name into a safe object-key suffix,
// keeping the extension. Empty results fall back to "file".
func SanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := GenerateSlug(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" || stem == "." {
		stem = "file"
	}
	ext = nonSlugChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// RemoveDiacritics decomposes the string and drops combining marks.
// "đ" has no decomposition and is mapped explicitly.
func RemoveDiacritics(input string) string {
	decomposed := norm.NFD.String(input)
	result := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == 'đ':
			result = append(result, 'd')
		case r == 'Đ':
			result = append(result, 'D')
		default:
			result = append(result, r)
		}
	}
	return string(result)
}
