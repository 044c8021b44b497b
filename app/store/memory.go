package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/app/models"
	"taskboard/app/query"
)

// MemoryStore keeps the task collection in process memory. It backs the unit
// tests and the database-free configuration (store: memory).
type MemoryStore struct {
	mu    sync.Mutex
	tasks []models.Task
	last  time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// now returns a strictly increasing timestamp so that creation order is a
// total order even on coarse clocks.
func (m *MemoryStore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Millisecond)
	}
	m.last = t
	return t
}

func (m *MemoryStore) List(ctx context.Context, spec query.Spec) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Task
	for _, t := range m.tasks {
		if spec.Matches(t) {
			out = append(out, copyTask(t))
		}
	}
	slices.SortStableFunc(out, query.Order(spec.Sort))
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	t := copyTask(m.tasks[i])
	return &t, nil
}

func (m *MemoryStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now
	for i := range task.Subtasks {
		task.Subtasks[i].ID = uuid.New().String()
	}
	m.tasks = append(m.tasks, copyTask(task))
	return &task, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	t := &m.tasks[i]
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.DueAt.Set {
		t.DueAt = upd.DueAt.Value
	}
	if upd.Tags != nil {
		t.Tags = slices.Clone(*upd.Tags)
	}
	if upd.Subtasks != nil {
		subs := make([]models.Subtask, 0, len(*upd.Subtasks))
		for _, e := range *upd.Subtasks {
			id := e.ID
			if id == "" {
				id = uuid.New().String()
			}
			subs = append(subs, models.Subtask{ID: id, Title: e.Title, Completed: e.Completed})
		}
		t.Subtasks = subs
	}
	t.UpdatedAt = m.now()
	out := copyTask(*t)
	return &out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.ErrNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

func (m *MemoryStore) BulkSetCompleted(ctx context.Context, ids []string, completed bool) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected []models.Task
	for i := range m.tasks {
		if slices.Contains(ids, m.tasks[i].ID) {
			m.tasks[i].Completed = completed
			m.tasks[i].UpdatedAt = m.now()
			affected = append(affected, copyTask(m.tasks[i]))
		}
	}
	return affected, nil
}

func (m *MemoryStore) BulkDelete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = slices.DeleteFunc(m.tasks, func(t models.Task) bool {
		return slices.Contains(ids, t.ID)
	})
	return nil
}

func (m *MemoryStore) AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(taskID)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	t := &m.tasks[i]
	t.Subtasks = append(t.Subtasks, models.Subtask{ID: uuid.New().String(), Title: title})
	t.UpdatedAt = m.now()
	out := copyTask(*t)
	return &out, nil
}

func (m *MemoryStore) UpdateSubtask(ctx context.Context, taskID, subtaskID string, upd models.SubtaskUpdate) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(taskID)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	t := &m.tasks[i]
	j := subtaskIndex(t.Subtasks, subtaskID)
	if j < 0 {
		return nil, models.ErrNotFound
	}
	if upd.Title != nil {
		t.Subtasks[j].Title = *upd.Title
	}
	if upd.Completed != nil {
		t.Subtasks[j].Completed = *upd.Completed
	}
	t.UpdatedAt = m.now()
	out := copyTask(*t)
	return &out, nil
}

func (m *MemoryStore) RemoveSubtask(ctx context.Context, taskID, subtaskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(taskID)
	if i < 0 {
		return models.ErrNotFound
	}
	t := &m.tasks[i]
	j := subtaskIndex(t.Subtasks, subtaskID)
	if j < 0 {
		return models.ErrNotFound
	}
	t.Subtasks = append(t.Subtasks[:j], t.Subtasks[j+1:]...)
	t.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) index(id string) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func subtaskIndex(subs []models.Subtask, id string) int {
	for i := range subs {
		if subs[i].ID == id {
			return i
		}
	}
	return -1
}

// copyTask detaches the slices so callers never alias stored state.
func copyTask(t models.Task) models.Task {
	t.Tags = slices.Clone(t.Tags)
	t.Subtasks = slices.Clone(t.Subtasks)
	if t.DueAt != nil {
		due := *t.DueAt
		t.DueAt = &due
	}
	return t
}
