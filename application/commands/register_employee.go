package commands

import (
	"context"
	"errors"
	"fmt"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"
	"attendance-backend/domain/events"
	pkgerrors "attendance-backend/pkg/errors"
	"attendance-backend/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Enrollment statuses
const (
	StatusRegistered        = "Registered"
	StatusAlreadyRegistered = "AlreadyRegistered"
	StatusNoFaceFound       = "NoFaceFound"
	StatusError             = "Error"
)

const WorkflowRegisterEmployee = "register_employee"

// RegisterEmployeeCommand enrolls the face in an uploaded image
type RegisterEmployeeCommand struct {
	Bucket string `json:"bucket" validate:"required"`
	Key    string `json:"key" validate:"required"`
}

// Validate validates the command
func (c RegisterEmployeeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// RegisterEmployeeResult is the outcome of an enrollment
type RegisterEmployeeResult struct {
	Status    string `json:"status"`
	FaceID    string `json:"faceId,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Message   string `json:"message"`
}

// MatchOptions controls face searches
type MatchOptions struct {
	Threshold     float64
	AutoProvision bool
}

// RegisterEmployeeHandler handles the RegisterEmployeeCommand
type RegisterEmployeeHandler struct {
	faces     ports.FaceCollection
	employees ports.EmployeeRepository
	names     ports.NameResolver
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	clock     ports.Clock
	tracer    trace.Tracer
	logger    *zap.Logger
	opts      MatchOptions
}

// NewRegisterEmployeeHandler creates a new handler instance
func NewRegisterEmployeeHandler(
	faces ports.FaceCollection,
	employees ports.EmployeeRepository,
	names ports.NameResolver,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	clock ports.Clock,
	tracer trace.Tracer,
	logger *zap.Logger,
	opts MatchOptions,
) *RegisterEmployeeHandler {
	return &RegisterEmployeeHandler{
		faces:     faces,
		employees: employees,
		names:     names,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		tracer:    tracer,
		logger:    logger,
		opts:      opts,
	}
}

// Handle executes the enrollment workflow. Negative outcomes (already
// registered, no face) are results, not errors.
func (h *RegisterEmployeeHandler) Handle(ctx context.Context, cmd RegisterEmployeeCommand) (result *RegisterEmployeeResult, err error) {
	ctx, span := h.tracer.Start(ctx, "RegisterEmployeeHandler.Handle",
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
			span.SetAttributes(attribute.String("enrollment.status", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "enrollment failed")
		}
		h.metrics.RecordOutcome(ctx, WorkflowRegisterEmployee, status)
		h.metrics.RecordDuration(ctx, WorkflowRegisterEmployee, h.clock.Now().Sub(start))
		span.End()
	}()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if h.opts.AutoProvision {
		if err := h.faces.EnsureCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure face collection: %w", err)
		}
		if err := h.employees.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure employee table: %w", err)
		}
	}

	img := ports.ImageRef{Bucket: cmd.Bucket, Key: cmd.Key}

	matches, err := h.faces.SearchByImage(ctx, img, 1, h.opts.Threshold)
	switch {
	case errors.Is(err, ports.ErrNoFaceDetected):
		return h.noFace(cmd), nil
	case err != nil:
		return nil, fmt.Errorf("failed to search face collection: %w", err)
	}

	if len(matches) > 0 {
		h.logger.Info("Face already registered",
			zap.String("faceId", matches[0].FaceID),
			zap.Float64("similarity", matches[0].Similarity),
			zap.String("key", cmd.Key),
		)
		return &RegisterEmployeeResult{
			Status:  StatusAlreadyRegistered,
			FaceID:  matches[0].FaceID,
			Message: fmt.Sprintf("Face already registered with FaceId: %s", matches[0].FaceID),
		}, nil
	}

	// Resolve the name before indexing so a bad key cannot leave an orphan face
	firstName, lastName, err := h.names.Resolve(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employee name: %w", err)
	}

	faceID, err := h.faces.IndexFace(ctx, img)
	switch {
	case errors.Is(err, ports.ErrNoFaceDetected):
		return h.noFace(cmd), nil
	case err != nil:
		return nil, fmt.Errorf("failed to index face: %w", err)
	}

	emp, err := employee.NewEmployee(faceID, firstName, lastName)
	if err != nil {
		return nil, err
	}

	if err := h.employees.Save(ctx, emp); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	event := events.NewEmployeeRegistered(faceID, firstName, lastName, cmd.Key, h.clock.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish employee registered event",
			zap.String("faceId", faceID),
			zap.Error(err),
		)
	}

	h.logger.Info("Employee registered",
		zap.String("faceId", faceID),
		zap.String("firstName", firstName),
		zap.String("lastName", lastName),
	)

	return &RegisterEmployeeResult{
		Status:    StatusRegistered,
		FaceID:    faceID,
		FirstName: firstName,
		LastName:  lastName,
		Message:   fmt.Sprintf("Face indexed and registered with FaceId: %s", faceID),
	}, nil
}

func (h *RegisterEmployeeHandler) noFace(cmd RegisterEmployeeCommand) *RegisterEmployeeResult {
	h.logger.Info("No face detected", zap.String("bucket", cmd.Bucket), zap.String("key", cmd.Key))
	return &RegisterEmployeeResult{
		Status:  StatusNoFaceFound,
		Message: fmt.Sprintf("No face detected in image: %s", cmd.Key),
	}
}
