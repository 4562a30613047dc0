// Package sanitize cleans user-supplied text before it is stored. Names,
// venues and genres are plain text; bios and descriptions keep light
// formatting and links.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plain = bluemonday.StrictPolicy()
	prose = prosePolicy()
)

// prosePolicy allows paragraph formatting, lists and nofollow http(s) or
// mailto links. Images, tables and styling are dropped.
func prosePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "b", "strong", "i", "em", "u", "ul", "ol", "li", "blockquote")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Text strips all markup and surrounding whitespace.
func Text(input string) string {
	return strings.TrimSpace(plain.Sanitize(input))
}

// HTML keeps the formatting allowed in bios and descriptions.
func HTML(input string) string {
	return strings.TrimSpace(prose.Sanitize(input))
}

// OptionalText sanitizes a nullable plain-text field. A value that is empty
// after sanitising becomes nil.
func OptionalText(input *string) *string {
	return optional(input, Text)
}

func OptionalHTML(input *string) *string {
	return optional(input, HTML)
}

func optional(input *string, clean func(string) string) *string {
	if input == nil {
		return nil
	}
	if out := clean(*input); out != "" {
		return &out
	}
	return nil
}

// Tags cleans a list of short labels such as genres: markup is stripped,
// blanks are dropped and case-insensitive duplicates keep their first
// spelling.
func Tags(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	out := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		tag := Text(input)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
