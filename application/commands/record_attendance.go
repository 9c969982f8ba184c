package commands

import (
	"context"
	"errors"
	"fmt"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"
	"attendance-backend/domain/events"
	pkgerrors "attendance-backend/pkg/errors"
	"attendance-backend/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Attendance statuses
const (
	StatusSuccess         = "Success"
	StatusAlreadyExists   = "AlreadyExists"
	StatusNoMatch         = "NoMatch"
	StatusUnknownEmployee = "UnknownEmployee"
)

const WorkflowRecordAttendance = "record_attendance"

// RecordAttendanceCommand checks in whoever appears in an uploaded image
type RecordAttendanceCommand struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"required"`
}

// Validate validates the command
func (c RecordAttendanceCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// RecordAttendanceResult is the outcome of a check-in
type RecordAttendanceResult struct {
	Status    string `json:"status"`
	Employee  string `json:"employee,omitempty"`
	Date      string `json:"date,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

// RecordAttendanceHandler handles the RecordAttendanceCommand
type RecordAttendanceHandler struct {
	faces      ports.FaceCollection
	employees  ports.EmployeeRepository
	attendance ports.AttendanceRepository
	publisher  ports.EventPublisher
	metrics    ports.MetricsRecorder
	clock      ports.Clock
	tracer     trace.Tracer
	logger     *zap.Logger
	opts       MatchOptions
}

// NewRecordAttendanceHandler creates a new handler instance
func NewRecordAttendanceHandler(
	faces ports.FaceCollection,
	employees ports.EmployeeRepository,
	attendanceRepo ports.AttendanceRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	clock ports.Clock,
	tracer trace.Tracer,
	logger *zap.Logger,
	opts MatchOptions,
) *RecordAttendanceHandler {
	return &RecordAttendanceHandler{
		faces:      faces,
		employees:  employees,
		attendance: attendanceRepo,
		publisher:  publisher,
		metrics:    metrics,
		clock:      clock,
		tracer:     tracer,
		logger:     logger,
		opts:       opts,
	}
}

// Handle executes the attendance workflow
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (result *RecordAttendanceResult, err error) {
	ctx, span := h.tracer.Start(ctx, "RecordAttendanceHandler.Handle",
		trace.WithAttributes(
			attribute.String("s3.bucket", cmd.Bucket),
			attribute.String("s3.key", cmd.Key),
		),
	)
	start := h.clock.Now()
	defer func() {
		status := StatusError
		if result != nil {
			status = result.Status
			span.SetAttributes(attribute.String("attendance.status", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "check-in failed")
		}
		h.metrics.RecordOutcome(ctx, WorkflowRecordAttendance, status)
		h.metrics.RecordDuration(ctx, WorkflowRecordAttendance, h.clock.Now().Sub(start))
		span.End()
	}()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if h.opts.AutoProvision {
		if err := h.attendance.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure attendance table: %w", err)
		}
	}

	img := ports.ImageRef{Bucket: cmd.Bucket, Key: cmd.Key}

	matches, err := h.faces.SearchByImage(ctx, img, 1, h.opts.Threshold)
	if err != nil && !errors.Is(err, ports.ErrNoFaceDetected) {
		return nil, fmt.Errorf("failed to search face collection: %w", err)
	}
	if len(matches) == 0 {
		h.logger.Info("No matching face found", zap.String("bucket", cmd.Bucket), zap.String("key", cmd.Key))
		return &RecordAttendanceResult{Status: StatusNoMatch}, nil
	}

	faceID := matches[0].FaceID
	span.SetAttributes(attribute.String("face.id", faceID))

	emp, err := h.employees.GetByFaceID(ctx, faceID)
	switch {
	case errors.Is(err, employee.ErrNotFound):
		h.logger.Warn("FaceId not registered in people table", zap.String("faceId", faceID))
		return &RecordAttendanceResult{Status: StatusUnknownEmployee}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}

	rec, err := attendance.NewRecord(emp, h.clock.Now())
	if err != nil {
		return nil, err
	}

	duplicate, err := h.attendance.ExistsForDate(ctx, faceID, rec.Date())
	if err != nil {
		// Fail open; Create still rejects a second record for the day
		h.logger.Warn("Duplicate check failed, continuing",
			zap.String("faceId", faceID),
			zap.String("date", rec.Date()),
			zap.Error(err),
		)
		duplicate = false
	}
	if duplicate {
		return h.alreadyExists(emp, rec), nil
	}

	if err := h.attendance.Create(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrAlreadyRecorded) {
			return h.alreadyExists(emp, rec), nil
		}
		return nil, fmt.Errorf("failed to write attendance: %w", err)
	}

	event := events.NewAttendanceRecorded(faceID, rec.Date(), rec.Timestamp(), emp.DisplayName(), h.clock.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish attendance recorded event",
			zap.String("faceId", faceID),
			zap.Error(err),
		)
	}

	h.logger.Info("Attendance logged",
		zap.String("faceId", faceID),
		zap.String("employee", emp.DisplayName()),
		zap.String("timestamp", rec.Timestamp()),
	)

	return &RecordAttendanceResult{
		Status:    StatusSuccess,
		Employee:  emp.DisplayName(),
		Timestamp: rec.Timestamp(),
	}, nil
}

func (h *RecordAttendanceHandler) alreadyExists(emp *employee.Employee, rec *attendance.Record) *RecordAttendanceResult {
	h.logger.Info("Attendance already recorded today",
		zap.String("faceId", emp.FaceID()),
		zap.String("employee", emp.DisplayName()),
		zap.String("date", rec.Date()),
	)
	return &RecordAttendanceResult{
		Status:   StatusAlreadyExists,
		Employee: emp.DisplayName(),
		Date:     rec.Date(),
	}
}
