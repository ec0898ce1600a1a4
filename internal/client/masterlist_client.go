package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"masterlist-web/internal/models"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// APIError is a non-2xx answer from the masterlist API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("masterlist api status=%d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// MasterlistClient talks to the remote masterlist REST API.
type MasterlistClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewMasterlistClient(baseURL string, timeout time.Duration) (*MasterlistClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid masterlist api url: %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MasterlistClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *MasterlistClient) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("json marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http read: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp, respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("json unmarshal response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response, body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil {
		if strings.TrimSpace(e.Message) != "" {
			return e.Message
		}
		if strings.TrimSpace(e.Error) != "" {
			return e.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func (c *MasterlistClient) FetchItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.doJSON(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, nil
}

func (c *MasterlistClient) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	var created models.Item
	if err := c.doJSON(ctx, http.MethodPost, "/items", item, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		created = item
	}
	return &created, nil
}

func (c *MasterlistClient) FetchBoMs(ctx context.Context) ([]models.BoMEntry, error) {
	var entries []models.BoMEntry
	if err := c.doJSON(ctx, http.MethodGet, "/bom", nil, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch bill of materials: %w", err)
	}
	return entries, nil
}

func (c *MasterlistClient) CreateBoMEntry(ctx context.Context, entry models.BoMEntry) (*models.BoMEntry, error) {
	var created models.BoMEntry
	if err := c.doJSON(ctx, http.MethodPost, "/bom", entry, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		created = entry
	}
	return &created, nil
}

func (c *MasterlistClient) FetchProcesses(ctx context.Context) ([]models.Process, error) {
	var processes []models.Process
	if err := c.doJSON(ctx, http.MethodGet, "/process", nil, &processes); err != nil {
		return nil, fmt.Errorf("failed to fetch processes: %w", err)
	}
	return processes, nil
}

func (c *MasterlistClient) CreateProcess(ctx context.Context, p models.Process) (*models.Process, error) {
	var created models.Process
	if err := c.doJSON(ctx, http.MethodPost, "/process", p, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		created = p
	}
	return &created, nil
}

func (c *MasterlistClient) FetchProcessSteps(ctx context.Context) ([]models.ProcessStep, error) {
	var steps []models.ProcessStep
	if err := c.doJSON(ctx, http.MethodGet, "/process-step", nil, &steps); err != nil {
		return nil, fmt.Errorf("failed to fetch process steps: %w", err)
	}
	return steps, nil
}

func (c *MasterlistClient) CreateProcessStep(ctx context.Context, step models.ProcessStep) (*models.ProcessStep, error) {
	var created models.ProcessStep
	if err := c.doJSON(ctx, http.MethodPost, "/process-step", step, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		created = step
	}
	return &created, nil
}
