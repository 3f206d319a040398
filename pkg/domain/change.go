package domain

// ChangeKind names the kind of edit a history entry records.
type ChangeKind string

const (
	ChangeInit         ChangeKind = "init"
	ChangeReplace      ChangeKind = "replace"
	ChangeAddModule    ChangeKind = "add-module"
	ChangeUpdateModule ChangeKind = "update-module"
	ChangeRemoveModule ChangeKind = "remove-module"
	ChangeMoveModule   ChangeKind = "move-module"
	ChangeTitle        ChangeKind = "title"
	ChangeTitleInPost  ChangeKind = "title-in-post"
	ChangeBatch        ChangeKind = "batch"
)

// Change describes the edit that produced a snapshot.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	ModuleID ModuleID   `json:"module_id,omitempty"`
}

// Coalesces reports whether c continues the same edit as prev, so that both
// may share one history entry. Timing is checked by the history store.
func (c Change) Coalesces(prev Change) bool {
	if c.Kind != prev.Kind {
		return false
	}
	switch c.Kind {
	case ChangeUpdateModule:
		return c.ModuleID == prev.ModuleID
	case ChangeTitle:
		return true
	}
	return false
}

// String returns a short human-readable label.
func (c Change) String() string {
	if c.ModuleID == "" {
		return string(c.Kind)
	}
	return string(c.Kind) + " " + string(c.ModuleID)
}
