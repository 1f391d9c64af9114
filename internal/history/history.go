// Package history implements the command-pattern undo/redo stack over the
// timeline's deletion flags. Only two commands exist, Delete and Restore,
// and each is the other's inverse over the same id set.
package history

import (
	"fmt"

	"textcut/internal/timeline"
)

// Op identifies a command's direction.
type Op string

const (
	OpDelete  Op = "delete"
	OpRestore Op = "restore"
)

// Command flips the deletion flag on a set of segments. Applying a command
// whose segments are already in the target state is a recorded no-op, not an
// error: pressing delete twice still occupies two undo slots.
type Command struct {
	Op  Op       `json:"op"`
	IDs []string `json:"ids"`
}

func Delete(ids ...string) Command  { return Command{Op: OpDelete, IDs: ids} }
func Restore(ids ...string) Command { return Command{Op: OpRestore, IDs: ids} }

// Inverse returns the opposite command over the same id set.
func (c Command) Inverse() Command {
	if c.Op == OpDelete {
		return Command{Op: OpRestore, IDs: c.IDs}
	}
	return Command{Op: OpDelete, IDs: c.IDs}
}

// Entry is a command as it sits on a stack. Changed records the ids whose
// flag the command actually flipped, so undoing a command that was a no-op
// for some ids restores exactly the prior state instead of blindly
// inverting the full set.
type Entry struct {
	Command
	Changed []string `json:"changed"`
}

// UnknownSegmentError reports a command referencing an id the timeline does
// not contain. The command is rejected before any flag is touched.
type UnknownSegmentError struct {
	ID string
}

func (e *UnknownSegmentError) Error() string {
	return fmt.Sprintf("unknown segment id %s", e.ID)
}

// History holds the undo and redo stacks. Depth is unbounded.
type History struct {
	undo []Entry
	redo []Entry
}

func New() *History { return &History{} }

// FromStacks rebuilds a history from serialized stacks, e.g. a project
// snapshot.
func FromStacks(undo, redo []Entry) *History {
	return &History{undo: undo, redo: redo}
}

// Stacks exposes copies of both stacks for serialization, oldest first.
func (h *History) Stacks() (undo, redo []Entry) {
	return append([]Entry(nil), h.undo...), append([]Entry(nil), h.redo...)
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Apply validates the command against the timeline, mutates the deletion
// flags, pushes the command onto the undo stack and clears the redo stack.
// Validation happens fully before any mutation so a failing command leaves
// the timeline untouched.
func (h *History) Apply(t *timeline.Timeline, c Command) error {
	if c.Op != OpDelete && c.Op != OpRestore {
		return fmt.Errorf("unknown command op %q", c.Op)
	}
	changed, err := run(t, c.Op, c.IDs)
	if err != nil {
		return err
	}
	h.undo = append(h.undo, Entry{Command: c, Changed: changed})
	h.redo = nil
	return nil
}

// Undo reverses the most recent command's effect. Returns false as a
// reported no-op when the stack is empty.
func (h *History) Undo(t *timeline.Timeline) (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	e := h.undo[len(h.undo)-1]
	if _, err := run(t, e.Inverse().Op, e.Changed); err != nil {
		return false, err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return true, nil
}

// Redo re-applies the most recently undone command. Returns false as a
// reported no-op when the stack is empty.
func (h *History) Redo(t *timeline.Timeline) (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	e := h.redo[len(h.redo)-1]
	if _, err := run(t, e.Op, e.Changed); err != nil {
		return false, err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return true, nil
}

// run validates every id before touching any flag, then applies the target
// state and reports which ids actually changed.
func run(t *timeline.Timeline, op Op, ids []string) ([]string, error) {
	target := op == OpDelete
	for _, id := range ids {
		if t.Lookup(id) == nil {
			return nil, &UnknownSegmentError{ID: id}
		}
	}
	var changed []string
	for _, id := range ids {
		s := t.Lookup(id)
		if s.Deleted != target {
			s.Deleted = target
			changed = append(changed, id)
		}
	}
	return changed, nil
}
