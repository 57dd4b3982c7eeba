package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Invoicer-api/internal/application/auth"
	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/cache"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	CompanyUC      *usecase.CompanyUseCase
	InvoiceUC      *billing.InvoiceUseCase
	JWTSecret      string
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	ServiceName    string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Auth (register/login públicos)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)
	authGroup.Put("/change-password", AuthMiddleware(deps.JWTSecret), authHandler.ChangePassword)

	// Companies (protegido)
	companies := api.Group("/companies", AuthMiddleware(deps.JWTSecret))
	companyHandler := NewCompanyHandler(deps.CompanyUC, log)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Patch("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)

	// Invoices (protegido; /summary antes de /:id)
	invoices := api.Group("/invoices", AuthMiddleware(deps.JWTSecret))
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, log)
	createInvoice := []fiber.Handler{invoiceHandler.Create}
	if deps.Idempotency != nil {
		createInvoice = append([]fiber.Handler{RequireIdempotency(deps.Idempotency, deps.IdempotencyTTL, log)}, createInvoice...)
	}
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/summary", invoiceHandler.Summary)
	invoices.Post("/", createInvoice...)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id", invoiceHandler.Update)
	invoices.Put("/:id/mark-paid", invoiceHandler.MarkPaid)
	invoices.Delete("/:id", invoiceHandler.Delete)
}
