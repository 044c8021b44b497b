package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskboard/app/controllers"
)

// RegisterRoutes sets up all routes for the application. The bulk routes are
// registered before the {taskID} routes; mux matches in registration order.
func RegisterRoutes(router *mux.Router, taskController *controllers.TaskController) {
	router.HandleFunc("/api/health", taskController.Health).Methods(http.MethodGet)

	router.HandleFunc("/api/tasks", taskController.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks", taskController.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/bulk", taskController.BulkUpdateTasks).Methods(http.MethodPatch)
	router.HandleFunc("/api/tasks/bulk", taskController.BulkDeleteTasks).Methods(http.MethodDelete)
	router.HandleFunc("/api/tasks/{taskID}", taskController.GetTaskByID).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/{taskID}", taskController.UpdateTask).Methods(http.MethodPatch)
	router.HandleFunc("/api/tasks/{taskID}", taskController.DeleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/api/tasks/{taskID}/subtasks", taskController.AddSubtask).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/{taskID}/subtasks/{subtaskID}", taskController.UpdateSubtask).Methods(http.MethodPatch)
	router.HandleFunc("/api/tasks/{taskID}/subtasks/{subtaskID}", taskController.DeleteSubtask).Methods(http.MethodDelete)
}
