// Package client is the browser-side half of the application: an HTTP client
// for the task API, a view model deriving the visible list, and a sync
// controller coordinating debounced reloads and confirm-then-apply mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"taskboard/app/models"
	"taskboard/app/query"
)

// TasksAPI is the server surface the sync controller depends on.
type TasksAPI interface {
	GetTasks(ctx context.Context, q ListQuery) ([]models.Task, error)
	CreateTask(ctx context.Context, payload models.TaskCreate) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	BulkComplete(ctx context.Context, ids []string, completed bool) ([]models.Task, error)
	BulkDelete(ctx context.Context, ids []string) error
	AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error)
	UpdateSubtask(ctx context.Context, taskID, subtaskID string, patch SubtaskPatch) (*models.Task, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) error
}

// ListQuery carries the GET /api/tasks parameters.
type ListQuery struct {
	Text string
	Tag  string
	Sort query.Sort
}

// TaskPatch is a partial task update; nil fields are omitted from the body.
type TaskPatch struct {
	Title     *string  `json:"title,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	DueAt     *string  `json:"dueAt,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SubtaskPatch is a partial subtask update.
type SubtaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Client talks to the task API over HTTP. Any non-success status surfaces as
// a generic error; the client never retries.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the API at base. A nil httpClient uses
// http.DefaultClient.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), http: httpClient}
}

func (c *Client) GetTasks(ctx context.Context, q ListQuery) ([]models.Task, error) {
	params := url.Values{}
	if q.Text != "" {
		params.Set("query", q.Text)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.Sort != "" {
		params.Set("sort", string(q.Sort))
	}
	path := "/api/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, payload models.TaskCreate) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) BulkComplete(ctx context.Context, ids []string, completed bool) ([]models.Task, error) {
	body := map[string]any{"ids": ids, "completed": completed}
	var out struct {
		Updated []models.Task `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/bulk", body, &out); err != nil {
		return nil, err
	}
	return out.Updated, nil
}

func (c *Client) BulkDelete(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/bulk", map[string]any{"ids": ids}, nil)
}

func (c *Client) AddSubtask(ctx context.Context, taskID, title string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+taskID+"/subtasks", map[string]string{"title": title}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateSubtask(ctx context.Context, taskID, subtaskID string, patch SubtaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+taskID+"/subtasks/"+subtaskID, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+taskID+"/subtasks/"+subtaskID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
