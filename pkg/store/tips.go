package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/codec"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// ErrArchived means the tip was already converted to a task.
var ErrArchived = errors.New("tip is archived")

// TipStore holds the tip backlog. Tips live in the tracker as issues labelled
// "tip"; archived tips stay in the list, deleted ones are dropped.
type TipStore struct {
	tracker tracker.Tracker

	mu   sync.Mutex
	tips []model.Tip
}

func NewTipStore(t tracker.Tracker) *TipStore {
	return &TipStore{tracker: t}
}

// Refresh reloads every tip, most recently updated first.
func (s *TipStore) Refresh(ctx context.Context) error {
	issues, err := s.tracker.ListIssues(ctx, tracker.IssueQuery{
		State:  tracker.StateAll,
		Labels: []string{codec.LabelTip},
	})
	if err != nil {
		return fmt.Errorf("refresh tips: %w", err)
	}

	tips := make([]model.Tip, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest || codec.IsTombstoned(issue) {
			continue
		}
		tips = append(tips, codec.DecodeTip(issue))
	}
	sortTips(tips)

	s.mu.Lock()
	s.tips = tips
	s.mu.Unlock()
	return nil
}

// List returns the tips; archived ones only when asked for.
func (s *TipStore) List(includeArchived bool) []model.Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Tip, 0, len(s.tips))
	for _, t := range s.tips {
		if t.Archived && !includeArchived {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *TipStore) Get(id string) (model.Tip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tips[i], true
	}
	return model.Tip{}, false
}

func (s *TipStore) Create(ctx context.Context, draft model.Tip) (model.Tip, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return model.Tip{}, fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	draft.Archived = false

	req := codec.EncodeTip(draft)
	req.State = nil
	issue, err := s.tracker.CreateIssue(ctx, req)
	if err != nil {
		return model.Tip{}, fmt.Errorf("create tip %q: %w", draft.Title, err)
	}
	created := codec.DecodeTip(issue)

	s.mu.Lock()
	s.tips = append([]model.Tip{created}, s.tips...)
	s.mu.Unlock()
	return created, nil
}

func (s *TipStore) Update(ctx context.Context, id string, p model.TipPatch) (model.Tip, error) {
	current, ok := s.Get(id)
	if !ok {
		return model.Tip{}, fmt.Errorf("%w: tip %s", ErrNotFound, id)
	}
	merged := p.Apply(current)
	merged.Title = strings.TrimSpace(merged.Title)
	if merged.Title == "" {
		return model.Tip{}, fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}

	updated, err := s.save(ctx, merged)
	if err != nil {
		return model.Tip{}, fmt.Errorf("update tip %s: %w", id, err)
	}
	return updated, nil
}

// Convert turns an active tip into a task on the board and archives the tip.
// The tip is retained, marked archived, with a comment pointing at the task.
func (s *TipStore) Convert(ctx context.Context, id string, tasks *Store) (model.Task, error) {
	tip, ok := s.Get(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: tip %s", ErrNotFound, id)
	}
	if tip.Archived {
		return model.Task{}, fmt.Errorf("%w: %s", ErrArchived, id)
	}

	description := tip.Description
	if len(tip.References) > 0 {
		description = strings.TrimSpace(description + "\n\n" + strings.Join(tip.References, "\n"))
	}
	task, err := tasks.Create(ctx, model.Draft{Title: tip.Title, Description: description})
	if err != nil {
		return model.Task{}, err
	}

	tip.Archived = true
	if _, err := s.save(ctx, tip); err != nil {
		return task, fmt.Errorf("task %s created but archiving tip %s failed: %w", task.ID, id, err)
	}

	note := fmt.Sprintf("Converted to task #%s", task.ID)
	if task.URL != "" {
		note = fmt.Sprintf("Converted to task %s", task.URL)
	}
	if _, err := s.tracker.CreateComment(ctx, tip.Number, note); err != nil {
		logging.Logger.WithField("tip", id).Warnf("could not comment on archived tip: %v", err)
	} else {
		s.bumpComments(id)
	}

	logging.Logger.WithFields(logrus.Fields{"tip": id, "task": task.ID}).Info("tip converted")
	return task, nil
}

// Delete tombstones the tip and drops it from the list. Unknown ids are a no-op.
func (s *TipStore) Delete(ctx context.Context, id string) error {
	tip, ok := s.Get(id)
	if !ok {
		return nil
	}
	if _, err := s.tracker.UpdateIssue(ctx, tip.Number, codec.Tombstone()); err != nil {
		return fmt.Errorf("delete tip %s: %w", id, err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tips = append(s.tips[:i], s.tips[i+1:]...)
	}
	s.mu.Unlock()
	return nil
}

func (s *TipStore) save(ctx context.Context, tip model.Tip) (model.Tip, error) {
	issue, err := s.tracker.UpdateIssue(ctx, tip.Number, codec.EncodeTip(tip))
	if err != nil {
		return model.Tip{}, err
	}
	saved := codec.DecodeTip(issue)

	s.mu.Lock()
	if i := s.indexOf(saved.ID); i >= 0 {
		s.tips[i] = saved
	}
	sortTips(s.tips)
	s.mu.Unlock()
	return saved, nil
}

func (s *TipStore) bumpComments(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.tips[i].CommentCount++
	}
}

func (s *TipStore) indexOf(id string) int {
	for i, t := range s.tips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// sortTips orders by last update, newest first, then by creation.
func sortTips(tips []model.Tip) {
	sort.SliceStable(tips, func(i, j int) bool {
		if !tips[i].UpdatedAt.Equal(tips[j].UpdatedAt) {
			return tips[i].UpdatedAt.After(tips[j].UpdatedAt)
		}
		return tips[i].CreatedAt.After(tips[j].CreatedAt)
	})
}
