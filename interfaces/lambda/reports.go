package lambda

import (
	"context"
	"encoding/json"
	"net/http"

	"attendance-backend/application/queries"
	pkgerrors "attendance-backend/pkg/errors"

	"go.uber.org/zap"
)

// ReportRequest is the direct-invoke payload of the report Lambdas
type ReportRequest struct {
	Date string `json:"date"`
}

// Response mirrors an API Gateway proxy response
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// DailyReportService builds the daily report
type DailyReportService interface {
	Handle(ctx context.Context, q queries.DailyReportQuery) (*queries.DailyReportResult, error)
}

// WeeklyReportService builds the weekly report
type WeeklyReportService interface {
	Handle(ctx context.Context, q queries.WeeklyReportQuery) (*queries.WeeklyReportResult, error)
}

// DailyReportHandler serves {date} -> daily report
type DailyReportHandler struct {
	service DailyReportService
	logger  *zap.Logger
}

func NewDailyReportHandler(service DailyReportService, logger *zap.Logger) *DailyReportHandler {
	return &DailyReportHandler{service: service, logger: logger}
}

func (h *DailyReportHandler) Handle(ctx context.Context, req ReportRequest) (Response, error) {
	result, err := h.service.Handle(ctx, queries.DailyReportQuery{Date: req.Date})
	if err != nil {
		return errorResponse(h.logger, err), nil
	}
	return jsonResponse(h.logger, http.StatusOK, result), nil
}

// WeeklyReportHandler serves {date} -> weekly report for the week holding date
type WeeklyReportHandler struct {
	service WeeklyReportService
	logger  *zap.Logger
}

func NewWeeklyReportHandler(service WeeklyReportService, logger *zap.Logger) *WeeklyReportHandler {
	return &WeeklyReportHandler{service: service, logger: logger}
}

func (h *WeeklyReportHandler) Handle(ctx context.Context, req ReportRequest) (Response, error) {
	result, err := h.service.Handle(ctx, queries.WeeklyReportQuery{Date: req.Date})
	if err != nil {
		return errorResponse(h.logger, err), nil
	}
	return jsonResponse(h.logger, http.StatusOK, result), nil
}

func errorResponse(logger *zap.Logger, err error) Response {
	status := pkgerrors.HTTPStatus(err)
	message := err.Error()
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Report failed", zap.Error(err))
	}
	return jsonResponse(logger, status, map[string]string{"error": message})
}

func jsonResponse(logger *zap.Logger, status int, body interface{}) Response {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal response", zap.Error(err))
		return Response{StatusCode: http.StatusInternalServerError, Body: `{"error":"internal error"}`}
	}
	return Response{StatusCode: status, Body: string(data)}
}
