package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/titangym/gymdesk/internal/tasks"
)

// TasksController exposes the maintenance task queue to the admin
// dashboard: run a job on demand, poll its status.
type TasksController struct {
	client *tasks.Client
}

func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// GetTaskStatus handles GET /api/admin/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "Не указан идентификатор задачи")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "Get task status error", "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTask handles POST /api/admin/tasks/:type/run, enqueueing one of the
// maintenance jobs immediately instead of waiting for the nightly cron.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var task backlite.Task
	switch taskType {
	case "close_stale_visits":
		task = tasks.CloseStaleVisitsTask{}
	case "expire_memberships":
		task = tasks.ExpireMembershipsTask{}
	default:
		respondBadRequest(c, fmt.Sprintf("Неизвестный тип задачи: %s", taskType))
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "Run task error", "Ошибка сервера")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
