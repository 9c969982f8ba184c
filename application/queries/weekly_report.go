package queries

import (
	"context"
	"sort"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	pkgerrors "attendance-backend/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WeeklyReportQuery asks for the Monday-Sunday week around an anchor date
type WeeklyReportQuery struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Validate validates the query
func (q WeeklyReportQuery) Validate() error {
	return validateDate(q.Date, q)
}

// AttendanceDetail is one day a person was present
type AttendanceDetail struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"dayOfWeek"`
	Time      string `json:"time"`
}

// EmployeeWeek summarises one person's week
type EmployeeWeek struct {
	TotalDaysPresent  int                `json:"totalDaysPresent"`
	AttendanceDetails []AttendanceDetail `json:"attendanceDetails"`
}

// WeeklyReportResult is the weekly report body, keyed by display name
type WeeklyReportResult struct {
	WeekRange     string                  `json:"weekRange"`
	WeeklySummary map[string]EmployeeWeek `json:"weeklySummary"`
}

// WeeklyReportHandler handles WeeklyReportQuery
type WeeklyReportHandler struct {
	attendance ports.AttendanceRepository
	metrics    ports.MetricsRecorder
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewWeeklyReportHandler creates a new handler instance
func NewWeeklyReportHandler(
	attendanceRepo ports.AttendanceRepository,
	metrics ports.MetricsRecorder,
	tracer trace.Tracer,
	logger *zap.Logger,
) *WeeklyReportHandler {
	return &WeeklyReportHandler{
		attendance: attendanceRepo,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
	}
}

// Handle builds the weekly report
func (h *WeeklyReportHandler) Handle(ctx context.Context, q WeeklyReportQuery) (result *WeeklyReportResult, err error) {
	ctx, span := h.tracer.Start(ctx, "WeeklyReportHandler.Handle",
		trace.WithAttributes(attribute.String("report.anchor", q.Date)),
	)
	defer func() {
		status := statusOK
		if err != nil {
			status = statusFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		h.metrics.RecordOutcome(ctx, WorkflowWeeklyReport, status)
		span.End()
	}()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	anchor, err := attendance.ParseDate(q.Date)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	week := attendance.WeekOf(anchor)
	span.SetAttributes(attribute.String("report.week", week.Range()))

	records, err := h.attendance.ListByDateRange(ctx, week.StartDate(), week.EndDate())
	if err != nil {
		h.logger.Error("Failed to read attendance",
			zap.String("start", week.StartDate()),
			zap.String("end", week.EndDate()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewDatabaseError("ListByDateRange", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp() < records[j].Timestamp()
	})

	summary := make(map[string]EmployeeWeek)
	for _, r := range records {
		// Guard against stores that return rows outside the window
		if !week.Contains(r.Date()) {
			continue
		}
		name := r.DisplayName()
		entry := summary[name]
		entry.TotalDaysPresent++
		entry.AttendanceDetails = append(entry.AttendanceDetails, AttendanceDetail{
			Date:      r.Date(),
			DayOfWeek: r.DayOfWeek(),
			Time:      r.Time(),
		})
		summary[name] = entry
	}

	return &WeeklyReportResult{
		WeekRange:     week.Range(),
		WeeklySummary: summary,
	}, nil
}
