// Package store is the persistence boundary for the task collection.
package store

import (
	"context"

	"taskboard/app/models"
	"taskboard/app/query"
)

// Store maps domain operations onto persistence calls. Implementations own
// the record shape, id assignment and timestamps; callers hand in already
// normalized field values. Methods that take an id return models.ErrNotFound
// when it does not resolve; bulk methods silently skip unknown ids.
type Store interface {
	List(ctx context.Context, spec query.Spec) ([]models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task models.Task) (*models.Task, error)
	Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id string) error

	BulkSetCompleted(ctx context.Context, ids []string, completed bool) ([]models.Task, error)
	BulkDelete(ctx context.Context, ids []string) error

	AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error)
	UpdateSubtask(ctx context.Context, taskID, subtaskID string, upd models.SubtaskUpdate) (*models.Task, error)
	RemoveSubtask(ctx context.Context, taskID, subtaskID string) error
}
