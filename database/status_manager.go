package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"discord-blog/models"
)

// recentEvents is how many journal events the status file lists.
const recentEvents = 20

// StatusManager manages the site status file.
type StatusManager struct {
	statusFile string
	journal    *Journal
	mutex      sync.Mutex
	status     *models.SiteStatus
}

// NewStatusManager creates a status manager writing to statusFile. The
// journal is optional and feeds the list of recent events.
func NewStatusManager(statusFile string, journal *Journal) *StatusManager {
	return &StatusManager{
		statusFile: statusFile,
		journal:    journal,
		status:     &models.SiteStatus{},
	}
}

// RecordRun updates the status with the outcome of a generator run.
func (sm *StatusManager) RecordRun(started time.Time, took time.Duration, clean bool, runErr error) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.status.LastRun = started
	sm.status.DurationMS = took.Milliseconds()
	sm.status.Clean = clean
	sm.status.Runs++
	sm.status.Error = ""
	if runErr != nil {
		sm.status.Error = runErr.Error()
	}
}

// Status returns a copy of the current status.
func (sm *StatusManager) Status() models.SiteStatus {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	return *sm.status
}

// Save commits the current status to the JSON file.
func (sm *StatusManager) Save() error {
	var events []models.PostEvent
	if sm.journal != nil {
		var err error
		if events, err = sm.journal.Recent(recentEvents); err != nil {
			return err
		}
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.status.RecentEvents = events

	dir := filepath.Dir(sm.statusFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(sm.status, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// Write to a temporary file first so readers never see a partial file.
	tmp := sm.statusFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	if err := os.Rename(tmp, sm.statusFile); err != nil {
		return fmt.Errorf("failed to replace status file: %w", err)
	}
	return nil
}
