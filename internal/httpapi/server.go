// Package httpapi exposes the planner over HTTP with fiber.
package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"weekly-planner/internal/repository"
	"weekly-planner/internal/service"
)

const (
	headerUserID    = "X-User-ID"
	headerCompanyID = "X-Company-ID"
	localsActor     = "actor"
)

// Deps are the services the handlers call into.
type Deps struct {
	Tasks       *service.TaskService
	Reports     *service.ReportService
	Users       *service.UserService
	Generator   *service.RecurrenceService
	Tags        *repository.TagRepository
	WeeksBuffer int
	// DefaultActor stands in for the caller when the actor headers are absent.
	DefaultActor service.Actor
}

type handlers struct {
	Deps
}

// New builds the fiber app with every route registered.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		AppName:               "weekly-planner",
	})
	app.Use(recover.New())

	h := &handlers{Deps: deps}
	app.Get("/health", h.health)

	api := app.Group("/", actorMiddleware(deps.DefaultActor))
	api.Post("/generate", h.generate)

	reports := api.Group("/reports/weekly")
	reports.Get("/", h.weeklyReport)
	reports.Get("/text", h.weeklyReportText)
	reports.Get("/pdf", h.weeklyReportPDF)

	tasks := api.Group("/tasks")
	tasks.Post("/", h.createTask)
	tasks.Get("/", h.listTasks)
	tasks.Get("/:id", h.getTask)
	tasks.Patch("/:id", h.updateTask)
	tasks.Delete("/:id", h.deleteTask)

	users := api.Group("/users")
	users.Get("/", h.listUsers)
	users.Post("/", h.createUser)
	users.Delete("/:id", h.deleteUser)

	api.Get("/tags", h.listTags)

	return app
}

// actorMiddleware resolves the acting user and company from headers, falling back to
// the configured defaults.
func actorMiddleware(defaults service.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := defaults
		if v := c.Get(headerUserID); v != "" {
			actor.UserID = v
		}
		if v := c.Get(headerCompanyID); v != "" {
			actor.CompanyID = v
		}
		c.Locals(localsActor, actor)
		return c.Next()
	}
}

func actorFrom(c *fiber.Ctx) service.Actor {
	actor, _ := c.Locals(localsActor).(service.Actor)
	return actor
}
