package services

import (
	"context"
	"strings"

	"taskboard/app/models"
	"taskboard/app/query"
	"taskboard/app/store"
)

// TaskService orchestrates task operations: it validates and normalizes
// incoming payloads and delegates persistence to the store.
type TaskService struct {
	store store.Store
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(s store.Store) *TaskService {
	return &TaskService{store: s}
}

// List returns the tasks matching spec. An empty result is not an error.
func (s *TaskService) List(ctx context.Context, spec query.Spec) ([]models.Task, error) {
	tasks, err := s.store.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Get returns a single task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.store.Get(ctx, id)
}

// Create validates and normalizes payload and persists a new task: title
// trimmed and required, dueAt parsed or null, empty tags dropped, subtasks
// with blank titles dropped.
func (s *TaskService) Create(ctx context.Context, payload models.TaskCreate) (*models.Task, error) {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, models.Invalid("Title is required")
	}

	task := models.Task{Title: title, Tags: cleanTags(payload.Tags)}
	if payload.DueAt != "" {
		due, err := models.ParseDue(payload.DueAt)
		if err != nil {
			return nil, models.Invalid("Invalid dueAt")
		}
		task.DueAt = &due
	}
	for _, sub := range payload.Subtasks {
		subTitle := strings.TrimSpace(sub.Title)
		if subTitle == "" {
			continue
		}
		task.Subtasks = append(task.Subtasks, models.Subtask{Title: subTitle, Completed: sub.Completed})
	}

	return s.store.Create(ctx, task)
}

// Update applies a partial update: only supplied fields change, an explicit
// dueAt null clears the due date, and a supplied subtasks array replaces the
// whole set (entries keeping their id where given).
func (s *TaskService) Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, models.Invalid("Title is required")
		}
		upd.Title = &title
	}
	if upd.Tags != nil {
		tags := cleanTags(*upd.Tags)
		upd.Tags = &tags
	}
	if upd.Subtasks != nil {
		edits := make([]models.SubtaskEdit, 0, len(*upd.Subtasks))
		for _, e := range *upd.Subtasks {
			title := strings.TrimSpace(e.Title)
			if title == "" {
				continue
			}
			e.Title = title
			edits = append(edits, e)
		}
		upd.Subtasks = &edits
	}
	return s.store.Update(ctx, id, upd)
}

// Remove deletes a task and its subtasks.
func (s *TaskService) Remove(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// BulkSetCompleted sets completed on every existing task in ids and returns
// the affected tasks. Unknown ids are ignored.
func (s *TaskService) BulkSetCompleted(ctx context.Context, ids []string, completed bool) ([]models.Task, error) {
	tasks, err := s.store.BulkSetCompleted(ctx, ids, completed)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// BulkRemove deletes every existing task in ids. Unknown ids are ignored.
func (s *TaskService) BulkRemove(ctx context.Context, ids []string) error {
	return s.store.BulkDelete(ctx, ids)
}

// AddSubtask appends a new incomplete subtask to the task.
func (s *TaskService) AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.Invalid("Subtask title required")
	}
	return s.store.AddSubtask(ctx, taskID, title)
}

// UpdateSubtask applies a partial update to one subtask of a task.
func (s *TaskService) UpdateSubtask(ctx context.Context, taskID, subtaskID string, upd models.SubtaskUpdate) (*models.Task, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, models.Invalid("Subtask title required")
		}
		upd.Title = &title
	}
	return s.store.UpdateSubtask(ctx, taskID, subtaskID, upd)
}

// RemoveSubtask deletes exactly one subtask; siblings are unaffected.
func (s *TaskService) RemoveSubtask(ctx context.Context, taskID, subtaskID string) error {
	return s.store.RemoveSubtask(ctx, taskID, subtaskID)
}

// cleanTags trims entries and drops the empties; duplicates pass through.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
