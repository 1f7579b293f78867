// Package offline keeps the board in one local JSON file instead of an issue
// tracker. The whole task list is rewritten on every change.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

type Store struct {
	Tasks []model.Task `json:"tasks"`
	Path  string       `json:"-"`
	mu    sync.Mutex
}

// Open loads the board file at path. A missing file is an empty board.
func Open(path string) (*Store, error) {
	s := &Store{Path: path}
	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return fmt.Errorf("read %s: %w", s.Path, err)
	}
	return nil
}

// save writes the whole sequence. Callers hold mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}

	tmp := s.Path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Fetch returns the stored tasks in file order.
func (s *Store) Fetch(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.Tasks...), nil
}

func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.Number = 0
	t.URL = ""
	s.Tasks = append(s.Tasks, t)
	if err := s.save(); err != nil {
		s.Tasks = s.Tasks[:len(s.Tasks)-1]
		return model.Task{}, fmt.Errorf("save %s: %w", s.Path, err)
	}
	logging.Logger.WithField("id", t.ID).Debug("offline task stored")
	return t, nil
}

func (s *Store) Update(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("offline task %s: %w", t.ID, os.ErrNotExist)
	}
	old := s.Tasks[i]
	t.CreatedAt = old.CreatedAt
	s.Tasks[i] = t
	if err := s.save(); err != nil {
		s.Tasks[i] = old
		return model.Task{}, fmt.Errorf("save %s: %w", s.Path, err)
	}
	return t, nil
}

// Delete removes the task from the file. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		return nil
	}
	prev := append([]model.Task(nil), s.Tasks...)
	s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	if err := s.save(); err != nil {
		s.Tasks = prev
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

