package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"taskboard/app/controllers"
	"taskboard/app/models"
	"taskboard/app/routes"
	"taskboard/app/services"
	"taskboard/app/store"
)

func newServer() *httptest.Server {
	service := services.NewTaskService(store.NewMemoryStore())
	controller := controllers.NewTaskController(service, nil)
	router := mux.NewRouter()
	routes.RegisterRoutes(router, controller)
	return httptest.NewServer(router)
}

func doJSON(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeTask(t *testing.T, resp *http.Response) models.Task {
	t.Helper()
	defer resp.Body.Close()
	var task models.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		t.Fatal(err)
	}
	return task
}

func TestHealth(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]bool
	json.NewDecoder(resp.Body).Decode(&body)
	if !body["ok"] {
		t.Errorf("body = %v", body)
	}
}

func TestCreateTask(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"  Buy milk  ","tags":["home"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	task := decodeTask(t, resp)
	if task.ID == "" || task.Title != "Buy milk" {
		t.Errorf("task = %+v", task)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank title status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListTasksWithQuery(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Buy milk","tags":["home"]}`).Body.Close()
	doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Write report","tags":["work"]}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/tasks?query=MIL&tag=home&completed=false&sort=newest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var tasks []models.Task
	json.NewDecoder(resp.Body).Decode(&tasks)
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Errorf("filtered list = %v", tasks)
	}
}

func TestPatchTask(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	created := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Buy milk","dueAt":"2026-06-01"}`))

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/"+created.ID, `{"completed":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	task := decodeTask(t, resp)
	if !task.Completed || task.Title != "Buy milk" || task.DueAt == nil {
		t.Errorf("partial update touched other fields: %+v", task)
	}

	// Explicit null clears the due date.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/"+created.ID, `{"dueAt":null}`)
	task = decodeTask(t, resp)
	if task.DueAt != nil {
		t.Errorf("dueAt not cleared: %+v", task.DueAt)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/missing", `{"completed":true}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteTask(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	created := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Buy milk"}`))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBulkUpdate(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	a := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"a"}`))
	decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"b"}`))

	body := `{"ids":["` + a.ID + `","unknown"],"completed":true}`
	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/bulk", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Updated []models.Task `json:"updated"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()
	if len(out.Updated) != 1 || !out.Updated[0].Completed {
		t.Errorf("updated = %v", out.Updated)
	}

	// Malformed bodies: missing ids, missing completed.
	for _, bad := range []string{`{"completed":true}`, `{"ids":["x"]}`, `{`} {
		resp := doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/bulk", bad)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q status = %d, want 400", bad, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestBulkDelete(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	a := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"a"}`))
	b := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"b"}`))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/bulk", `{"ids":["`+a.ID+`","unknown"]}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	listResp, _ := http.Get(srv.URL + "/api/tasks")
	var tasks []models.Task
	json.NewDecoder(listResp.Body).Decode(&tasks)
	listResp.Body.Close()
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Errorf("remaining = %v", tasks)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/bulk", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing ids status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSubtaskEndpoints(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	created := decodeTask(t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", `{"title":"Trip"}`))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/subtasks", `{"title":"Pack"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add subtask status = %d", resp.StatusCode)
	}
	task := decodeTask(t, resp)
	if len(task.Subtasks) != 1 || task.Subtasks[0].Title != "Pack" {
		t.Fatalf("task = %+v", task)
	}
	subID := task.Subtasks[0].ID

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/subtasks", `{"title":"  "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank subtask title status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/missing/subtasks", `{"title":"Pack"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing parent status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/"+created.ID+"/subtasks/"+subID, `{"completed":true}`)
	task = decodeTask(t, resp)
	if !task.Subtasks[0].Completed {
		t.Errorf("subtask not completed: %+v", task.Subtasks[0])
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID+"/subtasks/"+subID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete subtask status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID+"/subtasks/"+subID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second subtask delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestErrorBodiesAreJSON(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/missing", `{"completed":true}`)
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["error"] != "Not found" {
		t.Errorf("body = %v", body)
	}
}
