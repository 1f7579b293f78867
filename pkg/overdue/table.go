// Package overdue tracks open tasks with a due date and reports each of them
// once after the date has passed.
package overdue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// File is the table file name inside the config directory.
const File = "overdue.json"

type Entry struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Due    time.Time `json:"due"`
	// Reported is set once Sweep has returned the entry.
	Reported bool `json:"reported,omitempty"`
}

// Table is safe for concurrent use: store observers and scheduled sweeps may
// touch it from different goroutines.
type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	mu      sync.Mutex
	dirty   bool
}

func NewTable(path string) (*Table, error) {
	t := &Table{
		Path:    path,
		Entries: make(map[string]Entry),
	}
	if _, err := os.Stat(path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := json.NewDecoder(f).Decode(t); err != nil {
		return err
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return nil
}

func (t *Table) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(t.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Update tracks the task while it is open with a due date and drops it
// otherwise. Moving the due date makes the entry reportable again.
func (t *Table) Update(task model.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.update(task)
}

func (t *Table) update(task model.Task) {
	due, ok := dueTime(task)
	if !ok || task.Closed() {
		t.remove(task.ID)
		return
	}

	old, exists := t.Entries[task.ID]
	if exists && old.Due.Equal(due) && old.Title == task.Title {
		return
	}
	t.Entries[task.ID] = Entry{
		TaskID:   task.ID,
		Title:    task.Title,
		Due:      due,
		Reported: exists && old.Due.Equal(due) && old.Reported,
	}
	t.dirty = true
}

func (t *Table) Remove(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(taskID)
}

func (t *Table) remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Replace rebuilds the table from a full task list, keeping the reported
// flag of entries whose due date did not move.
func (t *Table) Replace(tasks []model.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	keep := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		keep[task.ID] = true
		t.update(task)
	}
	for id := range t.Entries {
		if !keep[id] {
			t.remove(id)
		}
	}
}

// Changed keeps the table in step with the task store.
func (t *Table) Changed(prev, next []model.Task, change model.Change) {
	switch change.Kind {
	case model.ChangeReset:
		t.Replace(next)
	case model.ChangeDeleted:
		t.Remove(change.ID)
	default:
		for _, task := range next {
			if task.ID == change.ID {
				t.Update(task)
				return
			}
		}
	}
}

// Sweep returns the entries whose due day ended before now and that were not
// reported yet, oldest first, and marks them reported.
func (t *Table) Sweep(now time.Time) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var swept []Entry
	for id, entry := range t.Entries {
		if entry.Reported || !now.After(entry.Due.AddDate(0, 0, 1)) {
			continue
		}
		entry.Reported = true
		t.Entries[id] = entry
		t.dirty = true
		swept = append(swept, entry)
	}
	sort.Slice(swept, func(i, j int) bool {
		if !swept[i].Due.Equal(swept[j].Due) {
			return swept[i].Due.Before(swept[j].Due)
		}
		return swept[i].TaskID < swept[j].TaskID
	})
	return swept
}

// dueTime is the start of the due day in local time.
func dueTime(task model.Task) (time.Time, bool) {
	if task.DueDate == "" {
		return time.Time{}, false
	}
	due, err := time.ParseInLocation(model.DateLayout, task.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
