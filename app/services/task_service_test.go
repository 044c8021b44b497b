package services

import (
	"context"
	"errors"
	"testing"

	"taskboard/app/models"
	"taskboard/app/query"
	"taskboard/app/store"
)

func newService() *TaskService {
	return NewTaskService(store.NewMemoryStore())
}

func TestCreateTrimsTitle(t *testing.T) {
	svc := newService()
	task, err := svc.Create(context.Background(), models.TaskCreate{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("title = %q, want %q", task.Title, "Buy milk")
	}
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, title := range []string{"", "   "} {
		_, err := svc.Create(ctx, models.TaskCreate{Title: title})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Create(%q) error = %v, want ValidationError", title, err)
		}
	}

	// Nothing was persisted.
	tasks, _ := svc.List(ctx, query.Spec{Sort: query.SortNewest})
	if len(tasks) != 0 {
		t.Errorf("rejected creates persisted %d tasks", len(tasks))
	}
}

func TestCreateNormalizes(t *testing.T) {
	svc := newService()
	task, err := svc.Create(context.Background(), models.TaskCreate{
		Title: "Trip",
		DueAt: "2026-06-01",
		Tags:  []string{" home ", "", "work"},
		Subtasks: []models.SubtaskCreate{
			{Title: "  Pack  "},
			{Title: "   "},
			{Title: "Book", Completed: true},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.DueAt == nil || task.DueAt.Format("2006-01-02") != "2026-06-01" {
		t.Errorf("dueAt = %v", task.DueAt)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "home" || task.Tags[1] != "work" {
		t.Errorf("tags = %v, want trimmed with empties dropped", task.Tags)
	}
	if len(task.Subtasks) != 2 {
		t.Fatalf("subtasks = %v, want blank entries dropped", task.Subtasks)
	}
	if task.Subtasks[0].Title != "Pack" || task.Subtasks[0].Completed {
		t.Errorf("subtask[0] = %+v", task.Subtasks[0])
	}
	if !task.Subtasks[1].Completed {
		t.Errorf("subtask completed flag dropped: %+v", task.Subtasks[1])
	}
}

func TestCreateRejectsBadDueAt(t *testing.T) {
	svc := newService()
	_, err := svc.Create(context.Background(), models.TaskCreate{Title: "x", DueAt: "not-a-date"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestUpdateUnknownIDLeavesStoreUnchanged(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	svc.Create(ctx, models.TaskCreate{Title: "Keep me"})

	done := true
	_, err := svc.Update(ctx, "missing", models.TaskUpdate{Completed: &done})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	tasks, _ := svc.List(ctx, query.Spec{Sort: query.SortNewest})
	if len(tasks) != 1 || tasks[0].Completed {
		t.Errorf("store changed by failed update: %v", tasks)
	}
}

func TestUpdateTrimsAndRejectsBlankTitle(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{Title: "Old"})

	title := "  New title  "
	updated, err := svc.Update(ctx, task.ID, models.TaskUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q", updated.Title)
	}

	blank := "   "
	if _, err := svc.Update(ctx, task.ID, models.TaskUpdate{Title: &blank}); err == nil {
		t.Error("blank title update should be rejected")
	}
}

func TestBulkSetCompletedIgnoresUnknownIDs(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{Title: "Buy milk"})

	updated, err := svc.BulkSetCompleted(ctx, []string{task.ID, "unknown"}, true)
	if err != nil {
		t.Fatalf("BulkSetCompleted: %v", err)
	}
	if len(updated) != 1 || updated[0].ID != task.ID || !updated[0].Completed {
		t.Fatalf("updated = %v", updated)
	}
}

func TestBulkRemoveIgnoresUnknownIDs(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, models.TaskCreate{Title: "a"})
	b, _ := svc.Create(ctx, models.TaskCreate{Title: "b"})

	if err := svc.BulkRemove(ctx, []string{a.ID, "unknown"}); err != nil {
		t.Fatalf("BulkRemove: %v", err)
	}
	tasks, _ := svc.List(ctx, query.Spec{Sort: query.SortNewest})
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Errorf("remaining tasks = %v", tasks)
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.TaskCreate{Title: " Buy milk ", Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := svc.List(ctx, query.Spec{Sort: query.SortNewest})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != created.ID || got.Title != "Buy milk" || got.Tags[0] != "home" {
		t.Errorf("round-tripped task = %+v", got)
	}
}

func TestRemoveTwiceFailsSecondTime(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{Title: "Buy milk"})

	if err := svc.Remove(ctx, task.ID); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := svc.Remove(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second Remove error = %v, want ErrNotFound", err)
	}

	tasks, _ := svc.List(ctx, query.Spec{Sort: query.SortNewest})
	if len(tasks) != 0 {
		t.Errorf("store state after double remove: %v", tasks)
	}
}

func TestAddSubtask(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{Title: "Trip"})

	updated, err := svc.AddSubtask(ctx, task.ID, "  Pack  ")
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if len(updated.Subtasks) != 1 {
		t.Fatalf("subtasks = %v", updated.Subtasks)
	}
	sub := updated.Subtasks[0]
	if sub.Title != "Pack" || sub.Completed || sub.ID == "" {
		t.Errorf("subtask = %+v", sub)
	}

	if _, err := svc.AddSubtask(ctx, task.ID, "  "); err == nil {
		t.Error("blank subtask title should be rejected")
	}
	if _, err := svc.AddSubtask(ctx, "missing", "Pack"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown parent error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSubtaskPartial(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{Title: "Trip", Subtasks: []models.SubtaskCreate{{Title: "Pack"}}})
	subID := task.Subtasks[0].ID

	done := true
	updated, err := svc.UpdateSubtask(ctx, task.ID, subID, models.SubtaskUpdate{Completed: &done})
	if err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	if !updated.Subtasks[0].Completed || updated.Subtasks[0].Title != "Pack" {
		t.Errorf("subtask = %+v", updated.Subtasks[0])
	}
	if updated.Subtasks[0].ID != subID {
		t.Error("subtask id changed on update")
	}

	if _, err := svc.UpdateSubtask(ctx, task.ID, "missing", models.SubtaskUpdate{Completed: &done}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown subtask error = %v, want ErrNotFound", err)
	}
}

func TestRemoveSubtaskLeavesSiblings(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, models.TaskCreate{
		Title:    "Trip",
		Subtasks: []models.SubtaskCreate{{Title: "Pack"}, {Title: "Book"}},
	})

	if err := svc.RemoveSubtask(ctx, task.ID, task.Subtasks[0].ID); err != nil {
		t.Fatalf("RemoveSubtask: %v", err)
	}
	got, _ := svc.Get(ctx, task.ID)
	if len(got.Subtasks) != 1 || got.Subtasks[0].Title != "Book" {
		t.Errorf("subtasks after remove = %v", got.Subtasks)
	}

	if err := svc.RemoveSubtask(ctx, task.ID, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown subtask error = %v, want ErrNotFound", err)
	}
}

func TestListEmptyStoreReturnsEmptySlice(t *testing.T) {
	svc := newService()
	tasks, err := svc.List(context.Background(), query.Spec{Sort: query.SortNewest})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("List on empty store = %#v, want empty non-nil slice", tasks)
	}
}
