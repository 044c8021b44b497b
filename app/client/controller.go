package client

import (
	"context"
	"sync"
	"time"

	"taskboard/app/models"
	"taskboard/app/query"
)

// Controller coordinates user input with the server. Search input is
// debounced; tag and sort changes reload immediately; every mutation is sent
// first and applied to the view model only after the server confirms it.
type Controller struct {
	api      TasksAPI
	vm       *ViewModel
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64 // reload generation; a stale response must not win
}

// NewController wires api and vm together. debounce is the search delay.
func NewController(api TasksAPI, vm *ViewModel, debounce time.Duration) *Controller {
	return &Controller{api: api, vm: vm, debounce: debounce}
}

// ViewModel returns the controller's view model.
func (c *Controller) ViewModel() *ViewModel {
	return c.vm
}

// Reload fetches the task list for the current text/tag/sort and replaces
// the snapshot. If a newer reload was issued while this one was in flight,
// its response is discarded so the last-issued reload wins.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	tasks, err := c.api.GetTasks(ctx, ListQuery{
		Text: c.vm.SearchText(),
		Tag:  c.vm.Tag(),
		Sort: c.vm.Sort(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	stale := seq != c.seq
	c.mu.Unlock()
	if stale {
		return nil
	}
	c.vm.SetTasks(tasks)
	return nil
}

// SetSearchText records the keystroke and schedules a debounced reload; a
// new keystroke restarts the pending one.
func (c *Controller) SetSearchText(ctx context.Context, text string) {
	c.vm.SetSearchText(text)
	c.schedule(func() { c.Reload(ctx) })
}

// SetTag switches the tag filter and reloads immediately, cancelling any
// pending debounced reload (the immediate one already carries the latest
// search text).
func (c *Controller) SetTag(ctx context.Context, tag string) error {
	c.vm.SetTag(tag)
	c.cancelPending()
	return c.Reload(ctx)
}

// SetSort switches the sort key and reloads immediately.
func (c *Controller) SetSort(ctx context.Context, s query.Sort) error {
	c.vm.SetSort(s)
	c.cancelPending()
	return c.Reload(ctx)
}

// Add creates a task on the server and prepends the confirmed entity. On
// failure the snapshot is unchanged and the error is returned to the caller.
func (c *Controller) Add(ctx context.Context, payload models.TaskCreate) (*models.Task, error) {
	task, err := c.api.CreateTask(ctx, payload)
	if err != nil {
		return nil, err
	}
	c.vm.PrependTask(*task)
	return task, nil
}

// ToggleComplete updates one task's completed flag and replaces the local
// entry with the server's returned entity.
func (c *Controller) ToggleComplete(ctx context.Context, id string, completed bool) error {
	task, err := c.api.UpdateTask(ctx, id, TaskPatch{Completed: &completed})
	if err != nil {
		return err
	}
	c.vm.ReplaceTask(*task)
	return nil
}

// EditTitle renames one task; the server's normalized entity wins locally.
func (c *Controller) EditTitle(ctx context.Context, id, title string) error {
	task, err := c.api.UpdateTask(ctx, id, TaskPatch{Title: &title})
	if err != nil {
		return err
	}
	c.vm.ReplaceTask(*task)
	return nil
}

// Remove deletes one task, then drops it from the snapshot and selection.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.vm.RemoveTask(id)
	return nil
}

// BulkSetCompleted applies completed to the current selection, patches the
// matching local entries after the server confirms, and clears the selection.
func (c *Controller) BulkSetCompleted(ctx context.Context, completed bool) error {
	ids := c.vm.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	if _, err := c.api.BulkComplete(ctx, ids, completed); err != nil {
		return err
	}
	c.vm.PatchCompleted(ids, completed)
	c.vm.ClearSelection()
	return nil
}

// BulkRemove deletes the current selection, then removes the matching local
// entries and clears the selection.
func (c *Controller) BulkRemove(ctx context.Context) error {
	ids := c.vm.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := c.api.BulkDelete(ctx, ids); err != nil {
		return err
	}
	c.vm.RemoveTasks(ids)
	c.vm.ClearSelection()
	return nil
}

// ClearCompleted bulk-deletes every completed task in the snapshot.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	ids := c.vm.CompletedIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := c.api.BulkDelete(ctx, ids); err != nil {
		return err
	}
	c.vm.RemoveTasks(ids)
	c.vm.ClearSelection()
	return nil
}

// AddSubtask appends a subtask and replaces the parent task wholesale with
// the server's returned entity; subtasks are never patched locally.
func (c *Controller) AddSubtask(ctx context.Context, taskID, title string) error {
	task, err := c.api.AddSubtask(ctx, taskID, title)
	if err != nil {
		return err
	}
	c.vm.ReplaceTask(*task)
	return nil
}

// ToggleSubtask updates one subtask's completed flag via the server and
// replaces the parent task wholesale.
func (c *Controller) ToggleSubtask(ctx context.Context, taskID, subtaskID string, completed bool) error {
	task, err := c.api.UpdateSubtask(ctx, taskID, subtaskID, SubtaskPatch{Completed: &completed})
	if err != nil {
		return err
	}
	c.vm.ReplaceTask(*task)
	return nil
}

// RemoveSubtask deletes one subtask, then re-fetches the full task list.
// One extra round trip buys guaranteed consistency.
func (c *Controller) RemoveSubtask(ctx context.Context, taskID, subtaskID string) error {
	if err := c.api.DeleteSubtask(ctx, taskID, subtaskID); err != nil {
		return err
	}
	return c.Reload(ctx)
}

// Flush runs any pending debounced reload immediately.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	fn := c.pending
	c.pending = nil
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// schedule replaces any pending debounced action with fn.
func (c *Controller) schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = fn
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		run := c.pending
		c.pending = nil
		c.timer = nil
		c.mu.Unlock()
		if run != nil {
			run()
		}
	})
}

func (c *Controller) cancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}
