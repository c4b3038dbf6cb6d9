package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/service"
)

// TaskHandler handles task listing requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks?limit&offset. Malformed pagination values
// fall back to the defaults rather than failing the request.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePagination(r)
	page := h.taskService.ListTasks(r.Context(), offset, limit)

	shared.RespondWithJSON(w, r, http.StatusOK, TaskPageResponse{
		Items:   page.Items,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	})
}

// ListAllTasks handles GET /v2/image-recognition/tasks, which returns every
// task without pagination.
func (h *TaskHandler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ItemsResponse[domain.Task]{
		Items: h.taskService.ListAllTasks(r.Context()),
	})
}
