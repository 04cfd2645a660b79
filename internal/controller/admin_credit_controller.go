// FILE: internal/controller/admin_credit_controller.go
package controller

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/pkg/logger"
	"welcomeapp-be/internal/pkg/serverutils"
	"welcomeapp-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminCreditController interface {
	RegisterRoutes(r fiber.Router)
	GetAccount(ctx *fiber.Ctx) error
	GetTransactions(ctx *fiber.Ctx) error
	GetStatusCounts(ctx *fiber.Ctx) error
	GetRuns(ctx *fiber.Ctx) error
	GetLastRun(ctx *fiber.Ctx) error
	TriggerRun(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminCreditController struct {
	consumption service.ICreditConsumptionService
	ledger      service.ICreditLedgerService
	logger      logger.ILogger
	jwtSecret   string
}

func NewAdminCreditController(
	consumption service.ICreditConsumptionService,
	ledger service.ICreditLedgerService,
	logger logger.ILogger,
	jwtSecret string,
) IAdminCreditController {
	return &adminCreditController{
		consumption: consumption,
		ledger:      ledger,
		logger:      logger,
		jwtSecret:   jwtSecret,
	}
}

func (c *adminCreditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.AdminMiddleware(c.jwtSecret))

	// Credits
	h.Get("/credits/accounts/:email", c.GetAccount)
	h.Get("/credits/transactions", c.GetTransactions)
	h.Get("/credits/status-counts", c.GetStatusCounts)

	// Cron
	h.Get("/cron/runs", c.GetRuns)
	h.Get("/cron/last-run", c.GetLastRun)
	h.Post("/cron/consume-credits", c.TriggerRun)

	// System Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminCreditController) GetAccount(ctx *fiber.Ctx) error {
	email, err := url.PathUnescape(ctx.Params("email"))
	if err != nil || email == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid email"))
	}

	account, err := c.ledger.GetAccount(ctx.UserContext(), email)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Account not found"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Account", account))
}

func (c *adminCreditController) GetTransactions(ctx *fiber.Ctx) error {
	query := dto.ListTransactionsQuery{Page: 1, Limit: 20}
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	if err := serverutils.ValidateStruct(query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.ledger.ListTransactions(ctx.UserContext(), query)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Credit transactions", res))
}

func (c *adminCreditController) GetStatusCounts(ctx *fiber.Ctx) error {
	res, err := c.ledger.GetStatusCounts(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Account status counts", res))
}

func (c *adminCreditController) GetRuns(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	res, err := c.ledger.ListRuns(ctx.UserContext(), page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Cron runs", res))
}

func (c *adminCreditController) GetLastRun(ctx *fiber.Ctx) error {
	summary, err := c.consumption.LastRun(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if summary == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "No completed run yet"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Last run", summary))
}

// TriggerRun runs the engine on demand. ?dry_run=true only reports decisions.
func (c *adminCreditController) TriggerRun(ctx *fiber.Ctx) error {
	if ctx.QueryBool("dry_run", false) {
		decisions, err := c.consumption.Preview(ctx.UserContext(), time.Now().UTC())
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
		}
		return ctx.JSON(serverutils.SuccessResponse("Dry run", decisions))
	}

	summary, err := c.consumption.ConsumeCredits(ctx.UserContext(), entity.CronTriggerAdmin)
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Credit consumption run finished", summary))
}

func (c *adminCreditController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))
	level := ctx.Query("level", "")
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := c.logger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	logs := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, toLogListResponse(e))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminCreditController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id") // MD5 of the raw line, not a UUID

	entry, err := c.logger.GetLogById(logId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*entry),
		Details:         entry.Details,
	}))
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	createdAt, _ := time.Parse("2006-01-02T15:04:05.000Z0700", e.Timestamp)
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: createdAt,
	}
}
