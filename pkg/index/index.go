// Package index remembers which calendar event mirrors which task, so the
// calendar does not have to be searched on every change.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// File is the index file name inside the config directory.
const File = "events.json"

// Entry is one mirrored task.
type Entry struct {
	Calendar string    `json:"calendar"`
	EventID  string    `json:"eventId"`
	Synced   time.Time `json:"synced"`
}

// EventIndex maps task ids to their events. Entries are scoped by calendar so
// switching calendars never reuses an event id from the old one.
type EventIndex struct {
	Entries map[string]Entry `json:"entries"`

	path  string
	mu    sync.Mutex
	dirty bool
}

// Open loads the index at path. A missing file is an empty index.
func Open(path string) (*EventIndex, error) {
	idx := &EventIndex{Entries: make(map[string]Entry), path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("failed to parse event index %s: %w", path, err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]Entry)
	}
	return idx, nil
}

// Save writes the index if anything changed since it was opened or last saved.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(idx.path, data, 0600); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

// Lookup returns the event mirroring taskID on calendarID, or "".
func (idx *EventIndex) Lookup(calendarID, taskID string) string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.Entries[taskID]
	if !ok || e.Calendar != calendarID {
		return ""
	}
	return e.EventID
}

// Record stores the event for a task. Re-recording the same event only
// refreshes the sync time in memory.
func (idx *EventIndex) Record(calendarID, taskID, eventID string, at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, ok := idx.Entries[taskID]
	idx.Entries[taskID] = Entry{Calendar: calendarID, EventID: eventID, Synced: at}
	if !ok || prev.Calendar != calendarID || prev.EventID != eventID {
		idx.dirty = true
	}
}

func (idx *EventIndex) Forget(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.Entries[taskID]; ok {
		delete(idx.Entries, taskID)
		idx.dirty = true
	}
}

// Orphans lists, in id order, the tasks mirrored on calendarID for which
// live returns false.
func (idx *EventIndex) Orphans(calendarID string, live func(taskID string) bool) []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var out []string
	for id, e := range idx.Entries {
		if e.Calendar == calendarID && !live(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (idx *EventIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.Entries)
}
