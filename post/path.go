package post

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DraftsDir is the namespace drafts live under.
	DraftsDir = "drafts"

	draftLayout     = "2006-01-02-15-04-05"
	publishedLayout = "2006/01/02/15-04-05"
)

// ErrBadPath is returned for paths that are not post paths.
var ErrBadPath = errors.New("not a post path")

// PathFor returns the slash-separated path of a post created at date.
func PathFor(date time.Time, isDraft bool) string {
	if isDraft {
		return DraftsDir + "/" + date.Format(draftLayout)
	}
	return date.Format(publishedLayout)
}

// ParsePath is the inverse of PathFor. The returned time is in loc.
func ParsePath(path string, loc *time.Location) (time.Time, bool, error) {
	path = strings.Trim(path, "/")
	if rest, ok := strings.CutPrefix(path, DraftsDir+"/"); ok {
		date, err := time.ParseInLocation(draftLayout, rest, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadPath, path)
		}
		return date, true, nil
	}
	date, err := time.ParseInLocation(publishedLayout, path, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	return date, false, nil
}
