// Package view keeps a rendered board in step with the task collection.
//
// Plan turns one committed change into patch operations without touching any
// UI. Sync feeds those operations to a Renderer, and Board is the renderer the
// terminal views draw from.
package view

import (
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

type OpKind int

const (
	OpClear OpKind = iota
	OpAppend
	OpRemove
	OpReplace
	OpSetCount
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpAppend:
		return "append"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	case OpSetCount:
		return "count"
	}
	return "unknown"
}

// Op is one patch to a single column.
type Op struct {
	Kind   OpKind
	Column model.Status
	// ID is set for Remove and Replace; Task for Append and Replace.
	ID    string
	Task  model.Task
	Count int
}

func (o Op) String() string {
	switch o.Kind {
	case OpAppend, OpReplace:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Column, o.Task.ID)
	case OpRemove:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Column, o.ID)
	case OpSetCount:
		return fmt.Sprintf("%s %s %d", o.Kind, o.Column, o.Count)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Column)
}

// Plan returns the operations that bring a view of prev up to date with next.
// Counts are always taken from next, never adjusted incrementally.
func Plan(prev, next []model.Task, change model.Change) []Op {
	switch change.Kind {
	case model.ChangeReset:
		return planReset(next)

	case model.ChangeCreated:
		t, ok := find(next, change.ID)
		if !ok {
			return nil
		}
		return []Op{
			{Kind: OpAppend, Column: t.Status, Task: t},
			setCount(next, t.Status),
		}

	case model.ChangeUpdated:
		t, ok := find(next, change.ID)
		if !ok {
			return nil
		}
		from := change.From
		if old, ok := find(prev, change.ID); ok {
			from = old.Status
		}
		if from == t.Status {
			return []Op{{Kind: OpReplace, Column: t.Status, ID: t.ID, Task: t}}
		}
		return []Op{
			{Kind: OpRemove, Column: from, ID: t.ID},
			{Kind: OpAppend, Column: t.Status, Task: t},
			setCount(next, from),
			setCount(next, t.Status),
		}

	case model.ChangeDeleted:
		from := change.From
		if old, ok := find(prev, change.ID); ok {
			from = old.Status
		} else if from == "" {
			return nil
		}
		return []Op{
			{Kind: OpRemove, Column: from, ID: change.ID},
			setCount(next, from),
		}
	}
	return nil
}

func planReset(next []model.Task) []Op {
	ops := make([]Op, 0, len(next)+2*len(model.Statuses))
	for _, col := range model.Statuses {
		ops = append(ops, Op{Kind: OpClear, Column: col})
	}
	for _, t := range next {
		ops = append(ops, Op{Kind: OpAppend, Column: t.Status, Task: t})
	}
	for _, col := range model.Statuses {
		ops = append(ops, setCount(next, col))
	}
	return ops
}

// Counts returns the number of tasks per column.
func Counts(tasks []model.Task) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, col := range model.Statuses {
		counts[col] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

func setCount(tasks []model.Task, col model.Status) Op {
	n := 0
	for _, t := range tasks {
		if t.Status == col {
			n++
		}
	}
	return Op{Kind: OpSetCount, Column: col, Count: n}
}

func find(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
