package models

import (
	"encoding/json"
	"time"
)

// Task is a to-do record with optional due date, tags and subtasks.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueAt     *time.Time `json:"dueAt"`
	Tags      []string   `json:"tags"`
	Subtasks  []Subtask  `json:"subtasks"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Subtask is a checklist item owned by a Task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TaskCreate is the POST /api/tasks request body.
type TaskCreate struct {
	Title    string          `json:"title"`
	DueAt    string          `json:"dueAt,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Subtasks []SubtaskCreate `json:"subtasks,omitempty"`
}

// SubtaskCreate is a subtask entry supplied at task creation.
type SubtaskCreate struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TaskUpdate is the PATCH /api/tasks/{taskID} request body. A nil field was
// absent from the payload and leaves the stored value untouched; DueAt uses
// NullTime so an explicit null can clear the due date.
type TaskUpdate struct {
	Title     *string        `json:"title"`
	Completed *bool          `json:"completed"`
	DueAt     NullTime       `json:"dueAt"`
	Tags      *[]string      `json:"tags"`
	Subtasks  *[]SubtaskEdit `json:"subtasks"`
}

// SubtaskEdit is one entry of a full subtask replacement. An entry with an ID
// keeps that ID; entries without one are assigned a fresh ID by the store.
type SubtaskEdit struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// SubtaskUpdate is the PATCH subtask request body; nil fields are untouched.
type SubtaskUpdate struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// NullTime is a three-state timestamp field: absent, explicit null, or a
// value. Set is false only when the key was missing from the payload.
type NullTime struct {
	Set   bool
	Value *time.Time
}

func (n *NullTime) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := ParseDue(raw)
	if err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// ParseDue parses a due date sent by the client: RFC 3339 or the bare
// yyyy-mm-dd form a date input produces.
func ParseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
