// Package media saves chat attachments into post directories.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	log "log/slog"
	"math"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"discord-blog/models"

	"github.com/bwmarrin/discordgo"
)

// thumbMarker is inserted between the stem and the extension of thumbnails.
const thumbMarker = ".%dpx.jpg"

var cleanFilename = strings.NewReplacer(
	" ", "_",
	`\`, "", "/", "", "[", "", "]", "", "(", "", ")", "", "{", "", "}", "",
)

// Ingestor downloads attachments and produces thumbnails.
type Ingestor struct {
	fetcher         Fetcher
	maxDimension    int
	localThumbnails bool
}

// NewIngestor creates an ingestor. Thumbnails are capped at maxDimension
// pixels on their longest edge.
func NewIngestor(fetcher Fetcher, maxDimension int, localThumbnails bool) *Ingestor {
	return &Ingestor{
		fetcher:         fetcher,
		maxDimension:    maxDimension,
		localThumbnails: localThumbnails,
	}
}

// SanitizeFilename derives a safe local filename from an attachment URL.
func SanitizeFilename(a *discordgo.MessageAttachment) string {
	name := ""
	if u, err := url.Parse(a.URL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = a.Filename
	}
	name = cleanFilename.Replace(name)
	if name == "" || name == "." || name == ".." {
		name = "attachment"
	}
	return name
}

// UniqueFilename appends "_" before the extension of name until no file of
// that name exists in dir.
func UniqueFilename(dir, name string) string {
	for {
		if _, err := os.Lstat(filepath.Join(dir, name)); errors.Is(err, fs.ErrNotExist) {
			return name
		}
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + ext
	}
}

// SaveAttachments stores every attachment in dir and returns what was saved,
// in attachment order.
func (i *Ingestor) SaveAttachments(ctx context.Context, attachments []*discordgo.MessageAttachment, dir string) ([]models.Media, error) {
	saved := make([]models.Media, 0, len(attachments))
	for _, a := range attachments {
		m, err := i.save(ctx, a, dir)
		if err != nil {
			return saved, err
		}
		saved = append(saved, m)
	}
	return saved, nil
}

func (i *Ingestor) save(ctx context.Context, a *discordgo.MessageAttachment, dir string) (models.Media, error) {
	filename := UniqueFilename(dir, SanitizeFilename(a))
	target := filepath.Join(dir, filename)

	size, err := i.download(ctx, a.URL, target)
	if err != nil {
		return models.Media{}, err
	}
	if a.Size > 0 {
		size = int64(a.Size)
	}

	thumb, err := i.thumbnail(ctx, a, dir, filename, size)
	if err != nil {
		return models.Media{}, err
	}
	log.Debug("saved attachment", "file", target, "thumb", thumb, "size", size)
	return models.Media{Filename: filename, ThumbFilename: thumb, Size: size}, nil
}

// download writes url to target, which must not exist yet.
func (i *Ingestor) download(ctx context.Context, src, target string) (int64, error) {
	body, err := i.fetcher.Fetch(ctx, src)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", target, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return 0, fmt.Errorf("failed to save %s: %w", target, err)
	}
	return n, nil
}

// thumbnail returns the thumbnail reference for a saved attachment: "" when
// the attachment has no dimensions, the original filename when no smaller
// thumbnail could be produced, or the name of a new thumbnail file.
func (i *Ingestor) thumbnail(ctx context.Context, a *discordgo.MessageAttachment, dir, filename string, size int64) (string, error) {
	if a.Width <= 0 || a.Height <= 0 {
		return "", nil
	}

	width, height := ScaledSize(a.Width, a.Height, i.maxDimension)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	thumbName := UniqueFilename(dir, stem+fmt.Sprintf(thumbMarker, i.maxDimension))
	thumbPath := filepath.Join(dir, thumbName)

	_, err := i.download(ctx, ThumbnailURL(a.ProxyURL, width, height), thumbPath)
	if err != nil {
		if !i.localThumbnails {
			return "", err
		}
		log.Warn("thumbnail request failed, resizing locally", "file", filename, "err", err)
		if err := resizeLocal(filepath.Join(dir, filename), thumbPath, width, height); err != nil {
			log.Warn("local thumbnail failed, using original", "file", filename, "err", err)
			return filename, nil
		}
	}

	info, err := os.Stat(thumbPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat thumbnail %s: %w", thumbPath, err)
	}
	if info.Size() >= size {
		if err := os.Remove(thumbPath); err != nil {
			return "", fmt.Errorf("failed to remove oversized thumbnail %s: %w", thumbPath, err)
		}
		return filename, nil
	}
	return thumbName, nil
}

// ScaledSize fits width x height within limit on the longest edge. Sizes that
// already fit are returned unchanged.
func ScaledSize(width, height, limit int) (int, int) {
	scale := math.Max(1, float64(max(width, height))/float64(limit))
	return int(math.Floor(float64(width) / scale)), int(math.Floor(float64(height) / scale))
}

// ThumbnailURL asks the attachment proxy for a JPEG of the given size.
func ThumbnailURL(proxyURL string, width, height int) string {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return proxyURL
	}
	q := u.Query()
	q.Set("format", "jpeg")
	q.Set("width", strconv.Itoa(width))
	q.Set("height", strconv.Itoa(height))
	u.RawQuery = q.Encode()
	return u.String()
}
