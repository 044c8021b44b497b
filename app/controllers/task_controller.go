package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/app/models"
	"taskboard/app/query"
	"taskboard/app/services"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service *services.TaskService
	logger  *slog.Logger
}

// NewTaskController creates a new TaskController. A nil logger falls back to
// slog.Default().
func NewTaskController(service *services.TaskService, logger *slog.Logger) *TaskController {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskController{Service: service, logger: logger}
}

// Health handles GET /api/health.
func (c *TaskController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetTasks handles GET /api/tasks with query/tag/completed/sort parameters.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Service.List(r.Context(), query.FromValues(r.URL.Query()))
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTaskByID handles GET /api/tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	task, err := c.Service.Get(r.Context(), mux.Vars(r)["taskID"])
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var payload models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request payload"))
		return
	}

	task, err := c.Service.Create(r.Context(), payload)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PATCH /api/tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var upd models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request payload"))
		return
	}

	task, err := c.Service.Update(r.Context(), mux.Vars(r)["taskID"], upd)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{taskID}.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Remove(r.Context(), mux.Vars(r)["taskID"]); err != nil {
		c.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkUpdateTasks handles PATCH /api/tasks/bulk.
func (c *TaskController) BulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs       []string `json:"ids"`
		Completed *bool    `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDs == nil || body.Completed == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("ids[] and completed(boolean) required"))
		return
	}

	updated, err := c.Service.BulkSetCompleted(r.Context(), body.IDs, *body.Completed)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Task{"updated": updated})
}

// BulkDeleteTasks handles DELETE /api/tasks/bulk.
func (c *TaskController) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDs == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("ids[] required"))
		return
	}

	if err := c.Service.BulkRemove(r.Context(), body.IDs); err != nil {
		c.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSubtask handles POST /api/tasks/{taskID}/subtasks.
func (c *TaskController) AddSubtask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request payload"))
		return
	}

	task, err := c.Service.AddSubtask(r.Context(), mux.Vars(r)["taskID"], body.Title)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateSubtask handles PATCH /api/tasks/{taskID}/subtasks/{subtaskID}.
func (c *TaskController) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	var upd models.SubtaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request payload"))
		return
	}

	vars := mux.Vars(r)
	task, err := c.Service.UpdateSubtask(r.Context(), vars["taskID"], vars["subtaskID"], upd)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteSubtask handles DELETE /api/tasks/{taskID}/subtasks/{subtaskID}.
func (c *TaskController) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := c.Service.RemoveSubtask(r.Context(), vars["taskID"], vars["subtaskID"]); err != nil {
		c.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps the error taxonomy onto status codes: validation errors to
// 400, unresolved ids to 404, anything else to a logged generic 500.
func (c *TaskController) writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody(verr.Msg))
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Not found"))
	default:
		c.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
