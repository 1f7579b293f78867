package model

import "time"

// Tip is an idea backlog item that can later be turned into a task.
type Tip struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Complexity   int       `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	References   []string  `json:"references,omitempty" yaml:"references,omitempty"`
	CommentCount int       `json:"commentCount" yaml:"commentCount"`
	Archived     bool      `json:"archived,omitempty" yaml:"archived,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
	Number       int       `json:"number,omitempty" yaml:"number,omitempty"`
	URL          string    `json:"url,omitempty" yaml:"url,omitempty"`
}

// TipPatch is the tip counterpart of Patch.
type TipPatch struct {
	Title       *string
	Description *string
	Complexity  *int
	References  []string
}

func (p TipPatch) Apply(t Tip) Tip {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Complexity != nil {
		t.Complexity = *p.Complexity
	}
	if p.References != nil {
		t.References = append([]string(nil), p.References...)
	}
	return t
}
