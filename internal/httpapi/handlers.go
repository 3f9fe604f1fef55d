package httpapi

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/render"
	"weekly-planner/internal/service"
)

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// generate handles POST /generate.
func (h *handlers) generate(c *fiber.Ctx) error {
	result, err := h.Generator.Run(c.UserContext(), h.WeeksBuffer)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	body := fiber.Map{"success": true, "created": result.Created}
	if len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}
	return c.JSON(body)
}

func (h *handlers) buildReport(c *fiber.Ctx) (*service.Report, error) {
	return h.Reports.BuildReport(c.UserContext(), c.Query("date"))
}

// weeklyReport handles GET /reports/weekly?date=, where date is YYYY-MM-DD or an ISO timestamp.
func (h *handlers) weeklyReport(c *fiber.Ctx) error {
	report, err := h.buildReport(c)
	if err != nil {
		return respondError(c, err, "report")
	}
	return c.JSON(report)
}

func (h *handlers) weeklyReportText(c *fiber.Ctx) error {
	report, err := h.buildReport(c)
	if err != nil {
		return respondError(c, err, "report")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(render.Text(report))
}

func (h *handlers) weeklyReportPDF(c *fiber.Ctx) error {
	report, err := h.buildReport(c)
	if err != nil {
		return respondError(c, err, "report")
	}
	var buf bytes.Buffer
	if err := render.PDF(&buf, report); err != nil {
		return respondError(c, err, "report")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="weekly-report-%s.pdf"`, report.Meta.WeekStart))
	return c.Send(buf.Bytes())
}

// createTask handles POST /tasks.
func (h *handlers) createTask(c *fiber.Ctx) error {
	var input service.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}
	task, err := h.Tasks.CreateTask(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return respondError(c, err, "task")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": task})
}

// listTasks handles GET /tasks?date=, defaulting to the current week.
func (h *handlers) listTasks(c *fiber.Ctx) error {
	weekStart, tasks, err := h.Tasks.ListWeek(c.UserContext(), c.Query("date"))
	if err != nil {
		return respondError(c, err, "task")
	}
	return c.JSON(fiber.Map{
		"weekStart": weekStart.Format(calendar.DateLayout),
		"data":      tasks,
	})
}

func (h *handlers) getTask(c *fiber.Ctx) error {
	task, err := h.Tasks.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "task")
	}
	return c.JSON(fiber.Map{"data": task})
}

// updateTask handles PATCH /tasks/:id.
func (h *handlers) updateTask(c *fiber.Ctx) error {
	var input service.TaskUpdate
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}
	task, err := h.Tasks.UpdateTask(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "task")
	}
	return c.JSON(fiber.Map{"data": task})
}

// deleteTask handles DELETE /tasks/:id. The recurring master, if any, is kept.
func (h *handlers) deleteTask(c *fiber.Ctx) error {
	if err := h.Tasks.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "task")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *handlers) listUsers(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "user")
	}
	return c.JSON(fiber.Map{"data": users})
}

func (h *handlers) createUser(c *fiber.Ctx) error {
	var input service.UserInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c)
	}
	user, err := h.Users.Create(c.UserContext(), actorFrom(c), input)
	if err != nil {
		return respondError(c, err, "user")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": user})
}

// deleteUser handles DELETE /users/:id, removing the user's tasks and assignments too.
func (h *handlers) deleteUser(c *fiber.Ctx) error {
	if err := h.Users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "user")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *handlers) listTags(c *fiber.Ctx) error {
	tags, err := h.Tags.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err, "tag")
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return c.JSON(fiber.Map{"data": names})
}
