package post

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLength is the longest title, in runes, kept as is.
	MaxTitleLength = 72
	// UntitledTitle replaces an empty title.
	UntitledTitle = "Untitled post"
	// DraftPrefix marks a post as a draft when it starts the title.
	DraftPrefix = "draft:"

	ellipsis = "…"
)

// ParseText splits message text into a title and a body. The title is the
// first line; the rest of the first paragraph starts the body. A leading
// "draft:" (any case) on the title marks the post as a draft. Overlong titles
// are shortened and the full title is moved into the body.
func ParseText(raw string) (title, body string, isDraft bool) {
	text := strings.ReplaceAll(strings.TrimSpace(raw), "\r\n", "\n")
	head, body, _ := strings.Cut(text, "\n\n")
	title, rest, _ := strings.Cut(head, "\n")
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if rest = strings.TrimSpace(rest); rest != "" {
		body = strings.TrimSpace(rest + "\n\n" + body)
	}

	if len(title) >= len(DraftPrefix) && strings.EqualFold(title[:len(DraftPrefix)], DraftPrefix) {
		isDraft = true
		title = strings.TrimSpace(title[len(DraftPrefix):])
	}

	switch {
	case utf8.RuneCountInString(title) > MaxTitleLength:
		body = title + "\n\n" + body
		title = string([]rune(title)[:MaxTitleLength]) + ellipsis
	case title == "":
		title = UntitledTitle
	}
	return title, body, isDraft
}
