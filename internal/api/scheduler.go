package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recomarr/recomarr/internal/scheduler"
)

// schedulerHandler exposes the background task registry.
type schedulerHandler struct {
	scheduler *scheduler.Scheduler
}

func newSchedulerHandler(sched *scheduler.Scheduler) *schedulerHandler {
	return &schedulerHandler{scheduler: sched}
}

// ListTasks returns all scheduled tasks.
// GET /api/v1/scheduler/tasks
func (h *schedulerHandler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.ListTasks())
}

// GetTask returns information about a specific task.
// GET /api/v1/scheduler/tasks/:id
func (h *schedulerHandler) GetTask(c echo.Context) error {
	task, err := h.scheduler.GetTask(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, task)
}

// RunTask manually triggers a task to run.
// POST /api/v1/scheduler/tasks/:id/run
func (h *schedulerHandler) RunTask(c echo.Context) error {
	taskID := c.Param("id")
	if err := h.scheduler.RunNow(taskID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Task started",
		"taskId":  taskID,
	})
}
