// Package remote is the HTTP client for the task API the reconciler
// talks to. It is a collaborator of the engine, not the engine itself:
// its contract (bearer auth, 404-on-delete treated as absent) bounds
// the reconciler's behavior.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"todosync/internal/task"
)

// DefaultTimeout bounds every request; the engine enforces no other
// timeout of its own.
const DefaultTimeout = 30 * time.Second

// APIError represents a non-success response from the task API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client handles HTTP communication with the task API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the given base URL. The token
// may be empty; Authenticated reports whether calls can be made.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Authenticated reports whether a bearer credential is attached.
// Without one the reconciler short-circuits to a no-op.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      int64  `json:"user_id"`
}

// UpdateTaskRequest represents the request body for updating a task
type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}

// FetchTasks retrieves the full collection visible to the caller's
// scope. Filtering down to the current user happens client-side.
func (c *Client) FetchTasks(ctx context.Context) ([]task.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var tasks []task.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task on the server and returns the
// server-authoritative record, including its permanent id.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (task.Task, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/tasks", req)
	if err != nil {
		return task.Task{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return task.Task{}, apiError(resp)
	}

	var created task.Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return task.Task{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return created, nil
}

// UpdateTask updates an existing task. Only the success signal matters
// to the caller; the response body is not consumed beyond status.
func (c *Client) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// DeleteTask deletes a task. A 404 counts as success: the task is
// absent on the server either way.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// Ping reports whether the server is reachable at all. Any HTTP
// response counts; only transport failure means offline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/tasks", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
