package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/studyflow/backend/api/transport"
	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/pkg/httpcontext"
	taskUC "github.com/studyflow/backend/usecase/task"
)

const defaultDueTime = "23:59"

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Estimate completion time
// @Tags tasks
// @Router /api/v1/estimate [post]
func (h *TaskHandler) Estimate(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	var req transport.EstimateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	predicted, err := h.uc.Estimate(stdCtx, attributes(req))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.EstimateResponse{PredictedTime: predicted})
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	dueAt, err := parseDueInstant(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, taskUC.CreateTaskInput{
		UserID:         userID,
		TaskAttributes: attributes(req.EstimateRequest),
		DueAt:          dueAt,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List tasks with derived status
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	now := time.Now()
	if raw := string(ctx.QueryArgs().Peek("now")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "now must be RFC3339", nil))
			return
		}
		now = parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	views, err := h.uc.ListWithStatus(stdCtx, userID, now)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, views)
}

// @Summary Log actual completion time
// @Tags tasks
// @Router /api/v1/tasks/{id}/actual-time [patch]
func (h *TaskHandler) LogActualTime(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.ActualTimeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.LogActualTime(stdCtx, userID, taskID, req.ActualTime); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Mark task completed
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [patch]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	taskID, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.CompleteTask(stdCtx, userID, taskID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary User insights
// @Tags insights
// @Router /api/v1/insights [get]
func (h *TaskHandler) GetInsights(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	statements, err := h.uc.Insights(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, statements)
}

// @Summary Retrain the estimation model
// @Tags admin
// @Router /api/v1/admin/retrain [post]
func (h *TaskHandler) Retrain(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Retrain(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return "", false
	}
	return id, true
}

func (h *TaskHandler) userID(ctx *fasthttp.RequestCtx) string {
	userID := string(ctx.Request.Header.Peek("X-User-ID"))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
	}
	return userID
}

func attributes(req transport.EstimateRequest) domain.TaskAttributes {
	return domain.TaskAttributes{
		Course:             req.Course,
		TaskType:           req.TaskType,
		Difficulty:         req.Difficulty,
		TotalAvailableTime: req.TotalAvailableTime,
		DeadlineDays:       req.DeadlineDays,
	}
}

func parseDueInstant(req transport.TaskCreateRequest) (time.Time, error) {
	if req.DueAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueAt)
		if err != nil {
			return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "due_at must be RFC3339")
		}
		return parsed, nil
	}
	if req.DueDate == "" {
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "due date is required")
	}
	dueTime := req.DueTime
	if dueTime == "" {
		dueTime = defaultDueTime
	}
	parsed, err := time.Parse("2006-01-02 15:04", req.DueDate+" "+dueTime)
	if err != nil {
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "due_date/due_time must be 2006-01-02 and 15:04")
	}
	return parsed, nil
}
