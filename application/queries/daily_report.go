package queries

import (
	"context"
	"sort"
	"strings"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	pkgerrors "attendance-backend/pkg/errors"
	"attendance-backend/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	WorkflowDailyReport  = "daily_report"
	WorkflowWeeklyReport = "weekly_report"

	statusOK     = "OK"
	statusFailed = "Error"
)

// MsgMissingDate is the message returned when a report request has no date
const MsgMissingDate = "Date parameter is missing"

// DailyReportQuery asks for everyone present on one date
type DailyReportQuery struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Validate validates the query
func (q DailyReportQuery) Validate() error {
	return validateDate(q.Date, q)
}

// PresentEmployee is one line of the daily report
type PresentEmployee struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Time      string `json:"time"`
}

// DailyReportResult is the daily report body
type DailyReportResult struct {
	Date             string            `json:"date"`
	TotalPresent     int               `json:"totalPresent"`
	PresentEmployees []PresentEmployee `json:"presentEmployees"`
}

// DailyReportHandler handles DailyReportQuery
type DailyReportHandler struct {
	attendance ports.AttendanceRepository
	metrics    ports.MetricsRecorder
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewDailyReportHandler creates a new handler instance
func NewDailyReportHandler(
	attendanceRepo ports.AttendanceRepository,
	metrics ports.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *DailyReportHandler {
	return &DailyReportHandler{
		attendance: attendanceRepo,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
	}
}

// Handle builds the daily report, sorted by time of day
func (h *DailyReportHandler) Handle(ctx context.Context, q DailyReportQuery) (result *DailyReportResult, err error) {
	ctx, span := h.tracer.Start(ctx, "DailyReportHandler.Handle",
		trace.WithAttributes(attribute.String("report.date", q.Date)),
	)
	defer func() {
		h.finish(ctx, span, WorkflowDailyReport, err)
	}()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	records, err := h.attendance.ListByDate(ctx, q.Date)
	if err != nil {
		h.logger.Error("Failed to read attendance", zap.String("date", q.Date), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("ListByDate", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Time() != records[j].Time() {
			return records[i].Time() < records[j].Time()
		}
		return records[i].Timestamp() < records[j].Timestamp()
	})

	present := make([]PresentEmployee, 0, len(records))
	for _, r := range records {
		present = append(present, PresentEmployee{
			FirstName: r.FirstName(),
			LastName:  r.LastName(),
			Time:      r.Time(),
		})
	}

	h.logger.Debug("Daily report built", zap.String("date", q.Date), zap.Int("totalPresent", len(present)))

	return &DailyReportResult{
		Date:             q.Date,
		TotalPresent:     len(present),
		PresentEmployees: present,
	}, nil
}

func (h *DailyReportHandler) finish(ctx context.Context, span trace.Span, workflow string, err error) {
	status := statusOK
	if err != nil {
		status = statusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	h.metrics.RecordOutcome(ctx, workflow, status)
	span.End()
}

// validateDate distinguishes a missing date from a malformed one
func validateDate(date string, q interface{}) error {
	if strings.TrimSpace(date) == "" {
		return pkgerrors.NewValidationError(MsgMissingDate)
	}
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if _, err := attendance.ParseDate(date); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
