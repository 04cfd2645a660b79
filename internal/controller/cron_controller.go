// FILE: internal/controller/cron_controller.go
package controller

import (
	"errors"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/pkg/serverutils"
	"welcomeapp-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICronController interface {
	RegisterRoutes(r fiber.Router)
	ConsumeCredits(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type cronController struct {
	service    service.ICreditConsumptionService
	cronSecret string
}

func NewCronController(service service.ICreditConsumptionService, cronSecret string) ICronController {
	return &cronController{
		service:    service,
		cronSecret: cronSecret,
	}
}

func (c *cronController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cron")
	h.Get("/health", c.Health)
	h.Get("/consume-credits", serverutils.CronSecretMiddleware(c.cronSecret), c.ConsumeCredits)
}

func (c *cronController) ConsumeCredits(ctx *fiber.Ctx) error {
	started := serverutils.CronStartedAt(ctx)

	summary, err := c.service.ConsumeCredits(ctx.UserContext(), entity.CronTriggerHTTP)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrRunInProgress) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(dto.CronFailureResponse{
			Success:         false,
			Error:           err.Error(),
			ExecutionTimeMs: time.Since(started).Milliseconds(),
		})
	}

	// Response copy: the service's summary is also the cached last run
	res := *summary
	res.ExecutionTimeMs = time.Since(started).Milliseconds()
	return ctx.JSON(res)
}

func (c *cronController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
