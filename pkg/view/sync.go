package view

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Renderer is whatever draws the board. Implementations must not read the
// task collection themselves; they only see the operations.
type Renderer interface {
	Clear(col model.Status)
	Append(col model.Status, t model.Task)
	Remove(col model.Status, id string)
	Replace(col model.Status, t model.Task)
	SetCount(col model.Status, n int)
}

// Sync is a store observer that patches a Renderer after every change.
type Sync struct {
	mu       sync.Mutex
	renderer Renderer
}

func NewSync(r Renderer) *Sync {
	return &Sync{renderer: r}
}

func (s *Sync) Changed(prev, next []model.Task, change model.Change) {
	ops := Plan(prev, next, change)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		Apply(s.renderer, op)
	}
	logging.Logger.WithFields(logrus.Fields{
		"change": change.Kind.String(),
		"id":     change.ID,
		"ops":    len(ops),
	}).Debug("view patched")
}

// Apply dispatches one operation to r.
func Apply(r Renderer, op Op) {
	switch op.Kind {
	case OpClear:
		r.Clear(op.Column)
	case OpAppend:
		r.Append(op.Column, op.Task)
	case OpRemove:
		r.Remove(op.Column, op.ID)
	case OpReplace:
		r.Replace(op.Column, op.Task)
	case OpSetCount:
		r.SetCount(op.Column, op.Count)
	}
}
