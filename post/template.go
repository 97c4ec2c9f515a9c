package post

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"text/template"
	"time"

	"discord-blog/models"
)

// IndexFile is the name of the post source file.
const IndexFile = "index.md"

// DateLayout is the format of the Date header.
const DateLayout = "2006-01-02 15:04:05"

var sourceTemplate = template.Must(template.New(IndexFile).Parse(`Title: {{.Title}}
Author: {{.Author}}
Date: {{.Date}}

{{.Body}}

{{.Media}}`))

const (
	imageTemplate = "[![%[1]s]({attach}%[2]s)]({static}%[1]s)"
	videoTemplate = "<div class='video-thumb' markdown='1'>" + imageTemplate + "</div>"
	otherTemplate = "[%[1]s]({static}%[1]s)"
)

var (
	videoExtensions = map[string]bool{
		"mkv": true, "mpg": true, "mpeg": true, "mpv": true, "mp4": true,
		"m4v": true, "mov": true, "webm": true, "gif": true,
	}
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "svg": true, "heic": true,
		"heif": true, "bmp": true, "tiff": true, "webp": true,
	}
)

// MediaKind classifies a filename by extension.
func MediaKind(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	switch {
	case videoExtensions[ext]:
		return "video"
	case imageExtensions[ext]:
		return "image"
	default:
		return "other"
	}
}

// Embed returns the markdown that shows m inside a post. Only media with a
// thumbnail reference is embedded inline; everything else is a plain link.
func Embed(m models.Media) string {
	if m.ThumbFilename == "" {
		return fmt.Sprintf(otherTemplate, m.Filename)
	}
	switch MediaKind(m.Filename) {
	case "video":
		return fmt.Sprintf(videoTemplate, m.Filename, m.ThumbFilename)
	case "image":
		return fmt.Sprintf(imageTemplate, m.Filename, m.ThumbFilename)
	default:
		return fmt.Sprintf(otherTemplate, m.Filename)
	}
}

// EmbedAll joins the embeds of media, one per line.
func EmbedAll(media []models.Media) string {
	lines := make([]string, 0, len(media))
	for _, m := range media {
		lines = append(lines, Embed(m))
	}
	return strings.Join(lines, "\n")
}

// Render produces the index.md content of p.
func Render(p *models.Post) ([]byte, error) {
	var buf bytes.Buffer
	err := sourceTemplate.Execute(&buf, map[string]string{
		"Title":  headerValue(p.Title),
		"Author": headerValue(p.Author),
		"Date":   p.Date.Format(DateLayout),
		"Body":   p.Body,
		"Media":  EmbedAll(p.Media),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", IndexFile, err)
	}
	return buf.Bytes(), nil
}

// headerValue flattens s onto a single header line.
func headerValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseSource reads an index.md back into a post. Header lines run up to the
// first blank line; the Date header is interpreted in loc. The returned Body
// holds everything after the headers, media embeds included.
func ParseSource(data []byte, loc *time.Location) (*models.Post, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	header, body, _ := strings.Cut(text, "\n\n")

	p := &models.Post{Body: strings.TrimSpace(body)}
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			p.Title = value
		case "author":
			p.Author = value
		case "date":
			date, err := time.ParseInLocation(DateLayout, value, loc)
			if err != nil {
				return nil, fmt.Errorf("bad date header %q: %w", value, err)
			}
			p.Date = date
		}
	}
	if p.Date.IsZero() {
		return nil, errors.New("missing date header")
	}
	return p, nil
}
