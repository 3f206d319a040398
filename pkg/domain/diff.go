package domain

import (
	"reflect"
)

// DocumentDiff represents the changes between two document snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	Title       *string `json:"title,omitempty"`
	TitleInPost *bool   `json:"title_in_post,omitempty"`

	// Upserted holds modules that were added or whose record changed.
	Upserted []*Module `json:"upserted,omitempty"`

	// Removed lists ids of modules no longer present.
	Removed []ModuleID `json:"removed,omitempty"`

	// Order is the full module order, present only when it changed.
	Order []ModuleID `json:"order,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState *DocumentState, newState DocumentState) *DocumentDiff {
	diff := &DocumentDiff{}

	if oldState == nil || oldState.Title != newState.Title {
		diff.Title = &newState.Title
	}
	if oldState == nil {
		if newState.TitleInPost {
			diff.TitleInPost = &newState.TitleInPost
		}
	} else if oldState.TitleInPost != newState.TitleInPost {
		diff.TitleInPost = &newState.TitleInPost
	}

	var old DocumentState
	if oldState != nil {
		old = *oldState
	}
	diff.Upserted, diff.Removed = diffModules(old, newState)
	if !reflect.DeepEqual(moduleOrder(old), moduleOrder(newState)) {
		diff.Order = moduleOrder(newState)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffModules(old, new DocumentState) (upserted []*Module, removed []ModuleID) {
	for _, m := range new.Modules {
		prev, ok := old.Module(m.ID)
		// Pointer equality covers untouched modules shared between snapshots.
		if ok && (prev == m || reflect.DeepEqual(prev, m)) {
			continue
		}
		upserted = append(upserted, m)
	}
	for _, m := range old.Modules {
		if new.Index(m.ID) < 0 {
			removed = append(removed, m.ID)
		}
	}
	return upserted, removed
}

func moduleOrder(s DocumentState) []ModuleID {
	if len(s.Modules) == 0 {
		return nil
	}
	order := make([]ModuleID, len(s.Modules))
	for i, m := range s.Modules {
		order[i] = m.ID
	}
	return order
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DocumentDiff) IsEmpty() bool {
	return d.Title == nil &&
		d.TitleInPost == nil &&
		len(d.Upserted) == 0 &&
		len(d.Removed) == 0 &&
		d.Order == nil
}
