package handler

import (
	"bytes"
	"errors"
	"masterlist-web/internal/models"
	"masterlist-web/internal/service"
	"masterlist-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type MasterDataHandler struct {
	refs      service.ReferenceSource
	processes *service.ProcessService
	excel     *service.ExcelService
}

func NewMasterDataHandler(refs service.ReferenceSource, processes *service.ProcessService, excel *service.ExcelService) *MasterDataHandler {
	return &MasterDataHandler{
		refs:      refs,
		processes: processes,
		excel:     excel,
	}
}

func (h *MasterDataHandler) Template(c *fiber.Ctx) error {
	entity, err := models.ParseEntity(c.Params("entity"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}
	schema, err := models.SchemaFor(entity)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown entity", err)
	}

	var buf bytes.Buffer
	if err := h.excel.WriteTemplate(&buf, schema); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build template", err)
	}
	return sendWorkbook(c, service.TemplateFilename(entity), buf.Bytes())
}

func (h *MasterDataHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.refs.FetchItems(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to retrieve items", err)
	}
	return utils.SuccessResponse(c, "Items retrieved successfully", items)
}

func (h *MasterDataHandler) ListBoMs(c *fiber.Ctx) error {
	entries, err := h.refs.FetchBoMs(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to retrieve bill of materials", err)
	}
	return utils.SuccessResponse(c, "Bill of materials retrieved successfully", entries)
}

func (h *MasterDataHandler) ListProcesses(c *fiber.Ctx) error {
	processes, err := h.processes.ListProcesses(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to retrieve processes", err)
	}
	return utils.SuccessResponse(c, "Processes retrieved successfully", processes)
}

func (h *MasterDataHandler) CreateProcess(c *fiber.Ctx) error {
	var req models.Process
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	process, err := h.processes.CreateProcess(c.Context(), req)
	if err != nil {
		return formError(c, "Failed to create process", err)
	}
	return utils.CreatedResponse(c, "Process created successfully", process)
}

func (h *MasterDataHandler) ListProcessSteps(c *fiber.Ctx) error {
	steps, err := h.processes.ListProcessSteps(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to retrieve process steps", err)
	}
	return utils.SuccessResponse(c, "Process steps retrieved successfully", steps)
}

func (h *MasterDataHandler) CreateProcessStep(c *fiber.Ctx) error {
	var req models.ProcessStep
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	step, err := h.processes.CreateProcessStep(c.Context(), req)
	if err != nil {
		return formError(c, "Failed to create process step", err)
	}
	return utils.CreatedResponse(c, "Process step created successfully", step)
}

func (h *MasterDataHandler) PendingSetup(c *fiber.Ctx) error {
	jobs, err := service.FetchPendingSetup(c.Context(), h.refs)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to analyse master data", err)
	}
	return utils.SuccessResponse(c, "Pending setup retrieved successfully", fiber.Map{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

// formError answers validation failures with the per-field messages.
func formError(c *fiber.Ctx, message string, err error) error {
	var fieldErrs service.FieldErrors
	if errors.As(err, &fieldErrs) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}
	return utils.ErrorResponse(c, fiber.StatusBadGateway, message, err)
}
