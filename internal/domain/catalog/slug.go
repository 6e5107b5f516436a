package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify turns a display name into a URL slug: "Beef Böerewors 500g" -> "beef-boerewors-500g".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	folded = slugInvalid.ReplaceAllString(folded, "-")
	folded = strings.Trim(folded, "-")
	if len(folded) > 180 {
		folded = strings.TrimRight(folded[:180], "-")
	}
	return folded
}

// ValidSlug reports whether s is lower-case words joined by single hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// UniqueSlug returns base, or base-2, base-3... for the first candidate that
// exists reports as free.
func UniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if i > 500 {
			return "", fmt.Errorf("no free slug for %q", base)
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
