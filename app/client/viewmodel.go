package client

import (
	"slices"
	"sort"
	"sync"

	"taskboard/app/models"
	"taskboard/app/query"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

func (f StatusFilter) match(t models.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// ViewModel holds the last server-confirmed task snapshot plus the view
// inputs, and derives the visible list, tag set, active count and selection.
// It is never authoritative: every mutation goes through the server and the
// snapshot is corrected from the response.
type ViewModel struct {
	mu       sync.Mutex
	tasks    []models.Task
	filter   StatusFilter
	tag      string
	sort     query.Sort
	search   string
	selected map[string]bool
}

// NewViewModel returns a view model showing everything, sorted due-soonest.
func NewViewModel() *ViewModel {
	return &ViewModel{
		filter:   FilterAll,
		sort:     query.SortDueSoonest,
		selected: map[string]bool{},
	}
}

// SetTasks replaces the snapshot with a server response and clears the
// selection.
func (vm *ViewModel) SetTasks(tasks []models.Task) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.tasks = slices.Clone(tasks)
	vm.selected = map[string]bool{}
}

// Tasks returns a copy of the full snapshot.
func (vm *ViewModel) Tasks() []models.Task {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.tasks)
}

// Visible derives the rendered list: status filter then tag filter. The
// relative order of the last server response is preserved; there is no local
// re-sort.
func (vm *ViewModel) Visible() []models.Task {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var out []models.Task
	for _, t := range vm.tasks {
		if !vm.filter.match(t) {
			continue
		}
		if vm.tag != "" && !slices.Contains(t.Tags, vm.tag) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AllTags returns every tag across the full snapshot, deduplicated and in
// lexicographic order for stable rendering.
func (vm *ViewModel) AllTags() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	seen := map[string]bool{}
	var tags []string
	for _, t := range vm.tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// ActiveCount counts incomplete tasks over the full snapshot, not Visible.
func (vm *ViewModel) ActiveCount() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	n := 0
	for _, t := range vm.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// SetFilter sets the status filter.
func (vm *ViewModel) SetFilter(f StatusFilter) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.filter = f
}

// SetTag sets the active tag filter; empty means no tag filter.
func (vm *ViewModel) SetTag(tag string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.tag = tag
}

// Tag returns the active tag filter.
func (vm *ViewModel) Tag() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.tag
}

// SetSort sets the active sort key.
func (vm *ViewModel) SetSort(s query.Sort) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.sort = s
}

// Sort returns the active sort key.
func (vm *ViewModel) Sort() query.Sort {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sort
}

// SetSearchText stores the raw search input.
func (vm *ViewModel) SetSearchText(s string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.search = s
}

// SearchText returns the raw search input.
func (vm *ViewModel) SearchText() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.search
}

// Select marks or unmarks a task for bulk actions.
func (vm *ViewModel) Select(id string, on bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if on {
		vm.selected[id] = true
	} else {
		delete(vm.selected, id)
	}
}

// SelectedIDs returns the selected ids in lexicographic order.
func (vm *ViewModel) SelectedIDs() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var ids []string
	for id, on := range vm.selected {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ClearSelection drops every selection entry.
func (vm *ViewModel) ClearSelection() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selected = map[string]bool{}
}

// ReplaceTask swaps the snapshot entry with the same id for the server's
// returned entity, so local state reflects server-side normalization.
func (vm *ViewModel) ReplaceTask(task models.Task) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.tasks {
		if vm.tasks[i].ID == task.ID {
			vm.tasks[i] = task
			return
		}
	}
}

// PrependTask puts a freshly created task at the front of the snapshot.
func (vm *ViewModel) PrependTask(task models.Task) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.tasks = append([]models.Task{task}, vm.tasks...)
}

// RemoveTask drops a task from the snapshot and from the selection.
func (vm *ViewModel) RemoveTask(id string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.tasks = slices.DeleteFunc(vm.tasks, func(t models.Task) bool {
		return t.ID == id
	})
	delete(vm.selected, id)
}

// RemoveTasks drops every task whose id is in ids.
func (vm *ViewModel) RemoveTasks(ids []string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.tasks = slices.DeleteFunc(vm.tasks, func(t models.Task) bool {
		return slices.Contains(ids, t.ID)
	})
	for _, id := range ids {
		delete(vm.selected, id)
	}
}

// PatchCompleted flips the completed flag on every snapshot entry in ids.
func (vm *ViewModel) PatchCompleted(ids []string, completed bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.tasks {
		if slices.Contains(ids, vm.tasks[i].ID) {
			vm.tasks[i].Completed = completed
		}
	}
}

// CompletedIDs returns the ids of every completed task in the snapshot.
func (vm *ViewModel) CompletedIDs() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var ids []string
	for _, t := range vm.tasks {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
