package models

import "time"

// Post is a blog entry stored under a timestamp-derived path.
type Post struct {
	Path    string // slash separated, relative to the content root
	Title   string
	Author  string
	Date    time.Time
	Body    string
	IsDraft bool
	Media   []Media
}

// Media is an attachment saved into a post directory.
type Media struct {
	Filename      string
	ThumbFilename string // empty when the attachment has no thumbnail
	Size          int64
}

// PostEvent is a journal record of a post lifecycle change.
type PostEvent struct {
	EventID   int64  `json:"event_id"`
	Action    string `json:"action"`
	Path      string `json:"path"`
	AuthorID  string `json:"author_id"`
	MessageID string `json:"message_id"`
	Timestamp int64  `json:"timestamp"`
}

// Journal actions.
const (
	ActionCreated     = "created"
	ActionAdded       = "added"
	ActionPublished   = "published"
	ActionUnpublished = "unpublished"
	ActionDeleted     = "deleted"
)

// SiteStatus is the content of the status file written after each generator run.
type SiteStatus struct {
	LastRun      time.Time   `json:"last_run"`
	DurationMS   int64       `json:"duration_ms"`
	Clean        bool        `json:"clean"`
	Error        string      `json:"error,omitempty"`
	Runs         int64       `json:"runs"`
	RecentEvents []PostEvent `json:"recent_events,omitempty"`
}
