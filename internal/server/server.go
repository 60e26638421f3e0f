// Package server assembles the HTTP application: middleware, public and
// authenticated routes, and the websocket endpoint.
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/appointments"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/clients"
	"github.com/oarthurdev/vortex-gestao/internal/company"
	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/constructions"
	"github.com/oarthurdev/vortex-gestao/internal/contracts"
	"github.com/oarthurdev/vortex-gestao/internal/dashboard"
	"github.com/oarthurdev/vortex-gestao/internal/financial"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/properties"
	"github.com/oarthurdev/vortex-gestao/internal/realtime"
	"github.com/oarthurdev/vortex-gestao/internal/report"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Deps struct {
	Config *config.Config
	Store  storage.Storage
	Hub    *realtime.Hub
	// Bus delivers appointment events. Defaults to Hub; set to a RedisRelay
	// when several instances share notifications.
	Bus realtime.Broadcaster
	Log *zap.Logger
}

// requestLogger logs one line per request once the handler chain returns.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// the error handler has not written the status yet
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("company_id", auth.CompanyID(c)),
		)
		return nil
	}
}

func New(d Deps) *fiber.App {
	if d.Bus == nil {
		d.Bus = d.Hub
	}

	app := fiber.New(fiber.Config{
		AppName:      "vortex-gestao",
		ErrorHandler: apperror.Handler(d.Log),
		// Params and query values are kept by MemStorage past the request.
		Immutable: true,
	})

	app.Use(requestLogger(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Config.AllowedOrigins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use("/ws", realtime.UpgradeMiddleware(d.Config))
	app.Get("/ws", realtime.Handler(d.Hub, d.Log))

	store := d.Store
	clientSvc := clients.NewService(store)
	appointmentSvc := appointments.NewService(store, d.Bus, d.Log)
	contractSvc := contracts.NewService(store)
	financialSvc := financial.NewService(store)
	constructionSvc := constructions.NewService(store)

	api := app.Group("/api")

	// Public
	api.Post("/auth/register", auth.RegisterHandler(d.Config, store))
	api.Post("/auth/login", auth.LoginHandler(d.Config, store))
	api.Get("/companies", company.ListCompaniesHandler(store))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.Config))

	protected.Get("/auth/me", auth.MeHandler(store))

	// Usuários
	protected.Get("/users", company.ListUsersHandler(store))
	protected.Post("/users", auth.RequireRole(models.RoleAdmin), company.CreateUserHandler(store))
	protected.Put("/users/:id", auth.RequireRole(models.RoleAdmin), company.UpdateUserHandler(store))

	// Imóveis
	protected.Get("/properties", properties.ListPropertiesHandler(store))
	protected.Post("/properties", properties.CreatePropertyHandler(store))
	protected.Get("/properties/:id", properties.GetPropertyHandler(store))
	protected.Put("/properties/:id", properties.UpdatePropertyHandler(store))
	protected.Delete("/properties/:id", properties.DeletePropertyHandler(store))

	// Clientes e pipeline
	protected.Get("/clients", clients.ListClientsHandler(store))
	protected.Post("/clients", clients.CreateClientHandler(clientSvc))
	protected.Get("/clients/pipeline", clients.PipelineHandler(clientSvc))
	protected.Get("/clients/:id", clients.GetClientHandler(store))
	protected.Put("/clients/:id", clients.UpdateClientHandler(store))
	protected.Delete("/clients/:id", clients.DeleteClientHandler(store))
	protected.Get("/clients/:id/interactions", clients.ListInteractionsHandler(store))
	protected.Post("/clients/:id/interactions", clients.CreateInteractionHandler(clientSvc))

	// Agenda
	protected.Get("/appointments", appointments.ListAppointmentsHandler(appointmentSvc))
	protected.Post("/appointments", appointments.CreateAppointmentHandler(appointmentSvc))
	protected.Get("/appointments/:id", appointments.GetAppointmentHandler(appointmentSvc))
	protected.Put("/appointments/:id", appointments.UpdateAppointmentHandler(appointmentSvc))
	protected.Delete("/appointments/:id", appointments.DeleteAppointmentHandler(appointmentSvc))

	// Contratos
	protected.Get("/contracts", contracts.ListContractsHandler(contractSvc))
	protected.Post("/contracts", contracts.CreateContractHandler(contractSvc))
	protected.Get("/contracts/:id", contracts.GetContractHandler(contractSvc))
	protected.Put("/contracts/:id", contracts.UpdateContractHandler(contractSvc))
	protected.Delete("/contracts/:id", contracts.DeleteContractHandler(store))

	// Financeiro
	protected.Get("/transactions", financial.ListTransactionsHandler(financialSvc))
	protected.Post("/transactions", financial.CreateTransactionHandler(financialSvc))
	protected.Get("/transactions/:id", financial.GetTransactionHandler(financialSvc))
	protected.Put("/transactions/:id", financial.UpdateTransactionHandler(financialSvc))
	protected.Delete("/transactions/:id", financial.DeleteTransactionHandler(store))
	protected.Get("/financial-summary/monthly", financial.MonthlySummaryHandler(financialSvc))
	protected.Get("/reports/transactions.xlsx", report.TransactionsHandler(store))

	// Obras
	protected.Get("/constructions", constructions.ListConstructionsHandler(constructionSvc))
	protected.Post("/constructions", constructions.CreateConstructionHandler(constructionSvc))
	protected.Get("/constructions/:id", constructions.GetConstructionHandler(constructionSvc))
	protected.Put("/constructions/:id", constructions.UpdateConstructionHandler(constructionSvc))
	protected.Delete("/constructions/:id", constructions.DeleteConstructionHandler(store))
	protected.Get("/constructions/:id/tasks", constructions.ListTasksHandler(store))
	protected.Post("/constructions/:id/tasks", constructions.CreateTaskHandler(constructionSvc))
	protected.Put("/constructions/:id/tasks/:taskId", constructions.UpdateTaskHandler(store))
	protected.Delete("/constructions/:id/tasks/:taskId", constructions.DeleteTaskHandler(store))
	protected.Get("/constructions/:id/expenses", constructions.ListExpensesHandler(store))
	protected.Post("/constructions/:id/expenses", constructions.CreateExpenseHandler(constructionSvc))
	protected.Put("/constructions/:id/expenses/:expenseId", constructions.UpdateExpenseHandler(store))
	protected.Delete("/constructions/:id/expenses/:expenseId", constructions.DeleteExpenseHandler(store))

	// Dashboard
	protected.Get("/activities", activity.ListActivitiesHandler(store))
	protected.Get("/kpis", dashboard.KPIHandler(store))
	protected.Get("/dashboard/revenue-chart", dashboard.RevenueChartHandler(store))

	return app
}
