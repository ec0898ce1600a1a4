package handler

import (
	"bytes"
	"errors"
	"fmt"
	"masterlist-web/internal/config"
	"masterlist-web/internal/models"
	"masterlist-web/internal/service"
	"masterlist-web/internal/utils"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskFactory builds the background tasks. The worker package provides it.
type TaskFactory struct {
	Validate func(code, filePath string) (*asynq.Task, error)
	Submit   func(code string, allowPartial bool) (*asynq.Task, error)
}

type ImportHandler struct {
	imports  *service.ImportService
	enqueuer TaskEnqueuer
	tasks    TaskFactory
	cfg      *config.Config
}

// NewImportHandler wires the import endpoints. enqueuer may be nil, in which
// case every request runs synchronously.
func NewImportHandler(imports *service.ImportService, enqueuer TaskEnqueuer, tasks TaskFactory, cfg *config.Config) *ImportHandler {
	return &ImportHandler{
		imports:  imports,
		enqueuer: enqueuer,
		tasks:    tasks,
		cfg:      cfg,
	}
}

type recordView struct {
	Index int `json:"index"`
	models.CandidateRecord
}

type sessionView struct {
	models.ImportSummary
	SkipHeader   bool                      `json:"skip_header"`
	ItemsSession string                    `json:"items_session,omitempty"`
	Headers      []string                  `json:"headers"`
	Records      []recordView              `json:"records"`
	Submission   *models.SubmissionSummary `json:"submission,omitempty"`
}

func newSessionView(session *models.ImportSession, invalidOnly bool) sessionView {
	view := sessionView{
		ImportSummary: session.Summary(),
		SkipHeader:    session.SkipHeader,
		ItemsSession:  session.ItemsSession,
		Records:       []recordView{},
		Submission:    session.Submission,
	}
	if schema, err := models.SchemaFor(session.Entity); err == nil {
		view.Headers = schema.Headers()
	}
	for i, rec := range session.Records {
		if invalidOnly && rec.Valid {
			continue
		}
		view.Records = append(view.Records, recordView{Index: i, CandidateRecord: rec})
	}
	return view
}

var allowedExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".csv": true}

// Upload starts an import. Large files, or async=true, are validated in the background.
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	entity, err := models.ParseEntity(c.Params("entity"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only .xlsx, .xlsm and .csv files are allowed", nil)
	}
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	skipHeader, err := strconv.ParseBool(c.FormValue("skip_header", "true"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid skip_header value", err)
	}
	itemsSession := strings.TrimSpace(c.FormValue("items_session"))
	async := c.FormValue("async") == "true" || file.Size >= int64(h.cfg.AsyncValidationMinSize)

	if async && h.enqueuer != nil {
		session, err := h.imports.Queue(c.Context(), entity, file.Filename, skipHeader, itemsSession)
		if err != nil {
			return h.importError(c, "Failed to queue import", err)
		}

		filePath := filepath.Join(h.cfg.UploadPath, session.Code+ext)
		if err := c.SaveFile(file, filePath); err != nil {
			_ = h.imports.Discard(c.Context(), session.Code)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
		}

		task, err := h.tasks.Validate(session.Code, filePath)
		if err == nil {
			_, err = h.enqueuer.Enqueue(task)
		}
		if err != nil {
			_ = h.imports.Discard(c.Context(), session.Code)
			_ = os.Remove(filePath)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue validation task", err)
		}

		return c.Status(fiber.StatusAccepted).JSON(utils.Response{
			Success: true,
			Message: "Import queued for validation",
			Data:    newSessionView(session, false),
		})
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", err)
	}
	defer src.Close()

	session, err := h.imports.Start(c.Context(), service.StartRequest{
		Entity:       entity,
		Filename:     file.Filename,
		Reader:       src,
		SkipHeader:   skipHeader,
		ItemsSession: itemsSession,
	})
	if err != nil {
		return h.importError(c, "Failed to import file", err)
	}

	return utils.CreatedResponse(c, "File validated", newSessionView(session, false))
}

func (h *ImportHandler) List(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)

	sessions, total, err := h.imports.List(page.Offset(), page.Limit)
	if err != nil {
		return h.importError(c, "Failed to retrieve sessions", err)
	}

	return utils.PagedResponse(c, "Sessions retrieved successfully", sessions, page.Meta(total))
}

func (h *ImportHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.imports.ExportList(&buf); err != nil {
		return h.importError(c, "Failed to export sessions", err)
	}
	return sendWorkbook(c, "import_sessions.xlsx", buf.Bytes())
}

func (h *ImportHandler) Get(c *fiber.Ctx) error {
	session, err := h.imports.Get(c.Context(), c.Params("code"))
	if err != nil {
		return h.importError(c, "Failed to retrieve session", err)
	}
	return utils.SuccessResponse(c, "Session retrieved successfully", newSessionView(session, c.QueryBool("invalid")))
}

type editCellRequest struct {
	Value models.Cell `json:"value"`
}

// EditCell replaces a cell. With revalidate=true the row is re-validated too.
func (h *ImportHandler) EditCell(c *fiber.Ctx) error {
	row, err := strconv.Atoi(c.Params("row"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid row index", err)
	}
	col, err := strconv.Atoi(c.Params("col"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid column index", err)
	}

	var req editCellRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	edit := h.imports.EditCell
	if c.QueryBool("revalidate") {
		edit = h.imports.EditAndRevalidate
	}
	session, err := edit(c.Context(), c.Params("code"), row, col, req.Value)
	if err != nil {
		return h.importError(c, "Failed to edit cell", err)
	}
	return utils.SuccessResponse(c, "Cell updated", newSessionView(session, false))
}

func (h *ImportHandler) Revalidate(c *fiber.Ctx) error {
	row, err := strconv.Atoi(c.Params("row"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid row index", err)
	}

	session, err := h.imports.Revalidate(c.Context(), c.Params("code"), row)
	if err != nil {
		return h.importError(c, "Failed to revalidate row", err)
	}
	return utils.SuccessResponse(c, "Row revalidated", fiber.Map{
		"record":  recordView{Index: row, CandidateRecord: session.Records[row]},
		"session": session.Summary(),
	})
}

func (h *ImportHandler) ErrorReport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	filename, err := h.imports.ErrorReport(c.Context(), c.Params("code"), &buf)
	if err != nil {
		return h.importError(c, "Failed to build error report", err)
	}
	return sendWorkbook(c, filename, buf.Bytes())
}

// Submit sends the valid rows. partial=true allows invalid rows to be left out.
func (h *ImportHandler) Submit(c *fiber.Ctx) error {
	code := c.Params("code")
	allowPartial := c.QueryBool("partial")

	if c.QueryBool("async") && h.enqueuer != nil {
		if _, err := h.imports.CheckSubmittable(c.Context(), code, allowPartial); err != nil {
			return h.importError(c, "Session cannot be submitted", err)
		}

		task, err := h.tasks.Submit(code, allowPartial)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue submission", err)
		}
		info, err := h.enqueuer.Enqueue(task)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue submission", err)
		}

		return c.Status(fiber.StatusAccepted).JSON(utils.Response{
			Success: true,
			Message: "Submission queued",
			Data:    fiber.Map{"job_id": info.ID, "code": code},
		})
	}

	summary, err := h.imports.Submit(c.Context(), code, allowPartial)
	if err != nil {
		return h.importError(c, "Failed to submit session", err)
	}
	return utils.SuccessResponse(c, fmt.Sprintf("%d of %d rows submitted", summary.Succeeded, summary.Attempted), summary)
}

func (h *ImportHandler) Discard(c *fiber.Ctx) error {
	if err := h.imports.Discard(c.Context(), c.Params("code")); err != nil {
		return h.importError(c, "Failed to discard session", err)
	}
	return utils.SuccessResponse(c, "Session discarded", nil)
}

func (h *ImportHandler) importError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status = fiber.StatusNotFound
		message = "Session not found"
	case errors.Is(err, service.ErrSessionBusy), errors.Is(err, service.ErrSessionState):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidRowsPresent), errors.Is(err, service.ErrLinkedSession):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrDecode),
		errors.Is(err, service.ErrRowOutOfRange),
		errors.Is(err, service.ErrColumnOutOfRange):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrListingUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return utils.ErrorResponse(c, status, message, err)
}

func sendWorkbook(c *fiber.Ctx, filename string, data []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}
