package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// Discussion is implemented by backends with comments and an activity feed.
type Discussion interface {
	Comments(ctx context.Context, t model.Task) ([]tracker.Comment, error)
	AddComment(ctx context.Context, t model.Task, body string) (tracker.Comment, error)
	Activity(ctx context.Context, t model.Task) ([]tracker.Event, error)
}

func (s *Store) discussion(id string) (Discussion, model.Task, error) {
	d, ok := s.backend.(Discussion)
	if !ok {
		return nil, model.Task{}, ErrUnsupported
	}
	t, found := s.Get(id)
	if !found {
		return nil, model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, t, nil
}

func (s *Store) Comments(ctx context.Context, id string) ([]tracker.Comment, error) {
	d, t, err := s.discussion(id)
	if err != nil {
		return nil, err
	}
	return d.Comments(ctx, t)
}

func (s *Store) AddComment(ctx context.Context, id, body string) (tracker.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return tracker.Comment{}, errors.New("comment body is empty")
	}
	d, t, err := s.discussion(id)
	if err != nil {
		return tracker.Comment{}, err
	}
	return d.AddComment(ctx, t, body)
}

// Activity returns the task's event feed, oldest first.
func (s *Store) Activity(ctx context.Context, id string) ([]tracker.Event, error) {
	d, t, err := s.discussion(id)
	if err != nil {
		return nil, err
	}
	return d.Activity(ctx, t)
}
