package model

type ChangeKind int

const (
	// ChangeReset means the whole collection was replaced.
	ChangeReset ChangeKind = iota
	ChangeCreated
	ChangeUpdated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReset:
		return "reset"
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	}
	return "unknown"
}

// Change describes one committed mutation of the task collection.
type Change struct {
	Kind ChangeKind
	ID   string
	// From and To are the task status before and after the mutation.
	// Created sets only To, Deleted sets only From.
	From Status
	To   Status
}

func (c Change) StatusChanged() bool {
	return c.Kind == ChangeUpdated && c.From != c.To
}
