package review

import (
	"errors"

	"feriados/internal/domain/holiday"
)

// Domain errors
var (
	ErrEmptySelection = errors.New("select at least one holiday")
	ErrOnlyDuplicates = errors.New("all selected holidays already exist in the database")
)

// Candidate is a holiday fetched from the external source but not yet
// committed to the store. ExistsInDB marks candidates whose (startDate, name)
// matches a stored holiday; those are never selectable.
type Candidate struct {
	holiday.Holiday
	ExistsInDB bool
}

// State is the explicit review-session state: the fetched candidate list and
// the current selection. All transitions are pure — they return a new State
// and never mutate the receiver, so the workflow is testable without a UI.
type State struct {
	Candidates []Candidate
	Selected   map[string]bool
}

// NewState creates a review state for a fetched candidate list with an empty
// selection.
func NewState(candidates []Candidate) State {
	return State{Candidates: candidates, Selected: map[string]bool{}}
}

// ToggleSelect adds the id to the selection, or removes it if already present.
// Duplicate-flagged candidates cannot be selected.
// POST: returns a new State; the receiver is unchanged
func (s State) ToggleSelect(id string) State {
	for _, c := range s.Candidates {
		if c.ID == id && c.ExistsInDB {
			return s
		}
	}
	next := s.cloneSelection()
	if next.Selected[id] {
		delete(next.Selected, id)
	} else {
		next.Selected[id] = true
	}
	return next
}

// ToggleSelectAll selects exactly the candidates that do not already exist in
// the database. If all of those are already selected, it clears the selection
// instead (toggle semantics).
// POST: returns a new State; the receiver is unchanged
func (s State) ToggleSelectAll() State {
	selectable := s.selectableIDs()
	allSelected := len(selectable) > 0
	for _, id := range selectable {
		if !s.Selected[id] {
			allSelected = false
			break
		}
	}

	next := s
	next.Selected = make(map[string]bool, len(selectable))
	if allSelected {
		return next
	}
	for _, id := range selectable {
		next.Selected[id] = true
	}
	return next
}

// SelectedImportable returns the selected candidates that are not flagged as
// duplicates, in candidate-list order. This is the only set a bulk transition
// may act on — duplicate writes are prevented here.
func (s State) SelectedImportable() []Candidate {
	var out []Candidate
	for _, c := range s.Candidates {
		if s.Selected[c.ID] && !c.ExistsInDB {
			out = append(out, c)
		}
	}
	return out
}

// Remove drops the given candidates from the list and clears their selection.
// Used after a bulk transition persists (or rejects) them.
// POST: returns a new State; the receiver is unchanged
func (s State) Remove(ids []string) State {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	next := State{Selected: make(map[string]bool, len(s.Selected))}
	for _, c := range s.Candidates {
		if !drop[c.ID] {
			next.Candidates = append(next.Candidates, c)
		}
	}
	for id := range s.Selected {
		if !drop[id] {
			next.Selected[id] = true
		}
	}
	return next
}

// SelectedCount returns the number of selected candidates.
func (s State) SelectedCount() int {
	return len(s.Selected)
}

// SelectableCount returns the number of candidates eligible for selection.
func (s State) SelectableCount() int {
	return len(s.selectableIDs())
}

func (s State) selectableIDs() []string {
	var ids []string
	for _, c := range s.Candidates {
		if !c.ExistsInDB {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (s State) cloneSelection() State {
	next := s
	next.Selected = make(map[string]bool, len(s.Selected))
	for id, v := range s.Selected {
		next.Selected[id] = v
	}
	return next
}
