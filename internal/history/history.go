package history

import "fmt"

// UndoResult reports what UndoLast did. Undone is false when the stack was empty.
type UndoResult struct {
	Undone   bool
	Kind     Kind
	Username string // owner of the undone command
}

func (r UndoResult) Message() string {
	if !r.Undone {
		return "nothing to undo"
	}
	return fmt.Sprintf("undone: %s", r.Kind)
}

// History is a single LIFO stack of executed commands. There is no redo.
// It is not safe for concurrent use; callers serialize access.
type History struct {
	stack []Command
}

func New() *History {
	return &History{}
}

// PushAndExec executes cmd and records it.
func (h *History) PushAndExec(cmd Command) {
	cmd.Execute()
	h.stack = append(h.stack, cmd)
}

// UndoLast pops and reverses the most recent command.
func (h *History) UndoLast() UndoResult {
	if len(h.stack) == 0 {
		return UndoResult{}
	}
	last := len(h.stack) - 1
	cmd := h.stack[last]
	h.stack[last] = nil
	h.stack = h.stack[:last]
	cmd.Undo()
	return UndoResult{Undone: true, Kind: cmd.Kind(), Username: cmd.Username()}
}

// Len returns the number of undoable commands.
func (h *History) Len() int {
	return len(h.stack)
}
