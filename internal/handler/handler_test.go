package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"masterlist-web/internal/config"
	"masterlist-web/internal/models"
	"masterlist-web/internal/repository"
	"masterlist-web/internal/service"
	"masterlist-web/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const itemsCSV = "id,internal_item_name,tenant_id,item_description,type,uom,min_buffer,max_buffer,created_by,last_updated_by,is_deleted,createdAt,updatedAt,avg_weight_needed,scrap_type\n" +
	"1,Bolt,2,,sell,kgs,5,10,,,,,,TRUE,metal\n" +
	"2,Bolt,2,,component,nos,,,,,,,,FALSE,\n" +
	"3,Sheet,2,,component,nos,,,,,,,,FALSE,\n"

type fakeMasterData struct {
	mu      sync.Mutex
	items   []models.Item
	boms    []models.BoMEntry
	created []int64
}

func (f *fakeMasterData) FetchItems(ctx context.Context) ([]models.Item, error) {
	return f.items, nil
}

func (f *fakeMasterData) FetchBoMs(ctx context.Context) ([]models.BoMEntry, error) {
	return f.boms, nil
}

func (f *fakeMasterData) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, item.ID)
	return &item, nil
}

func (f *fakeMasterData) CreateBoMEntry(ctx context.Context, entry models.BoMEntry) (*models.BoMEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, entry.ID)
	return &entry, nil
}

func (f *fakeMasterData) FetchProcesses(ctx context.Context) ([]models.Process, error) {
	return []models.Process{{ID: 1, ProcessName: "Cutting", Type: "machining", TenantID: 1, FactoryID: 1}}, nil
}

func (f *fakeMasterData) CreateProcess(ctx context.Context, p models.Process) (*models.Process, error) {
	p.ID = 2
	return &p, nil
}

func (f *fakeMasterData) FetchProcessSteps(ctx context.Context) ([]models.ProcessStep, error) {
	return nil, nil
}

func (f *fakeMasterData) CreateProcessStep(ctx context.Context, step models.ProcessStep) (*models.ProcessStep, error) {
	step.ID = 3
	return &step, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "job-1", Type: task.Type()}, nil
}

type testEnv struct {
	app      *fiber.App
	md       *fakeMasterData
	enqueuer *fakeEnqueuer
	cfg      *config.Config
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T, withQueue bool) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := &config.Config{
		UploadMaxSize:          1 << 20,
		UploadPath:             t.TempDir(),
		AsyncValidationMinSize: 1 << 20,
		SessionLockTTL:         time.Second,
	}

	md := &fakeMasterData{}
	store := repository.NewSessionStore(redisClient, time.Hour)
	imports := service.NewImportService(store, nil, md, service.NewDispatcher(md, 2, logger), time.Second, logger)

	env := &testEnv{md: md, cfg: cfg, redis: mr}
	var enqueuer TaskEnqueuer
	if withQueue {
		env.enqueuer = &fakeEnqueuer{}
		enqueuer = env.enqueuer
	}

	tasks := TaskFactory{
		Validate: func(code, filePath string) (*asynq.Task, error) {
			return asynq.NewTask("import:validate", []byte(filePath)), nil
		},
		Submit: func(code string, allowPartial bool) (*asynq.Task, error) {
			return asynq.NewTask("import:submit", []byte(code)), nil
		},
	}

	importHandler := NewImportHandler(imports, enqueuer, tasks, cfg)
	mdHandler := NewMasterDataHandler(md, service.NewProcessService(md, md), service.NewExcelService())

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Get("/imports", importHandler.List)
	app.Post("/imports/:entity", importHandler.Upload)
	app.Get("/imports/:code", importHandler.Get)
	app.Delete("/imports/:code", importHandler.Discard)
	app.Put("/imports/:code/rows/:row/cells/:col", importHandler.EditCell)
	app.Post("/imports/:code/rows/:row/revalidate", importHandler.Revalidate)
	app.Get("/imports/:code/error-report", importHandler.ErrorReport)
	app.Post("/imports/:code/submit", importHandler.Submit)
	app.Get("/templates/:entity", mdHandler.Template)
	app.Get("/items", mdHandler.ListItems)
	app.Post("/processes", mdHandler.CreateProcess)
	app.Get("/pending-setup", mdHandler.PendingSetup)
	env.app = app

	return env
}

func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

type sessionBody struct {
	Code        string `json:"code"`
	Status      string `json:"status"`
	TotalRows   int    `json:"total_rows"`
	ValidRows   int    `json:"valid_rows"`
	InvalidRows int    `json:"invalid_rows"`
	Records     []struct {
		Index     int    `json:"index"`
		RowNumber int    `json:"row_number"`
		Valid     bool   `json:"valid"`
		Reason    string `json:"reason"`
	} `json:"records"`
}

func (e *testEnv) startItems(t *testing.T) sessionBody {
	t.Helper()
	resp, body := e.do(t, uploadRequest(t, "/imports/item", "items.csv", itemsCSV, nil))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Error)

	var session sessionBody
	require.NoError(t, json.Unmarshal(body.Data, &session))
	return session
}
