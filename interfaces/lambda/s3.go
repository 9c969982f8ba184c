// Package lambda adapts Lambda event payloads to the application handlers.
package lambda

import (
	"context"

	"attendance-backend/application/commands"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// EnrollmentService registers employees from uploaded images
type EnrollmentService interface {
	Handle(ctx context.Context, cmd commands.RegisterEmployeeCommand) (*commands.RegisterEmployeeResult, error)
}

// AttendanceService records check-ins from uploaded images
type AttendanceService interface {
	Handle(ctx context.Context, cmd commands.RecordAttendanceCommand) (*commands.RecordAttendanceResult, error)
}

// EnrollmentHandler consumes S3 put notifications on the enrollment bucket
type EnrollmentHandler struct {
	service EnrollmentService
	logger  *zap.Logger
}

// NewEnrollmentHandler creates the enrollment Lambda handler
func NewEnrollmentHandler(service EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, logger: logger}
}

// Handle processes the first record of the event. Failures are reported in
// the result rather than returned, so S3 does not redeliver the event.
func (h *EnrollmentHandler) Handle(ctx context.Context, event events.S3Event) (*commands.RegisterEmployeeResult, error) {
	bucket, key, ok := firstObject(event, h.logger)
	if !ok {
		return &commands.RegisterEmployeeResult{Status: commands.StatusError, Message: msgNoRecords}, nil
	}

	result, err := h.service.Handle(ctx, commands.RegisterEmployeeCommand{Bucket: bucket, Key: key})
	if err != nil {
		h.logger.Error("Enrollment failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return &commands.RegisterEmployeeResult{Status: commands.StatusError, Message: err.Error()}, nil
	}
	return result, nil
}

// AttendanceHandler consumes S3 put notifications on the check-in bucket
type AttendanceHandler struct {
	service AttendanceService
	logger  *zap.Logger
}

// NewAttendanceHandler creates the check-in Lambda handler
func NewAttendanceHandler(service AttendanceService, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, logger: logger}
}

// Handle processes the first record of the event
func (h *AttendanceHandler) Handle(ctx context.Context, event events.S3Event) (*commands.RecordAttendanceResult, error) {
	bucket, key, ok := firstObject(event, h.logger)
	if !ok {
		return &commands.RecordAttendanceResult{Status: commands.StatusError, Message: msgNoRecords}, nil
	}

	result, err := h.service.Handle(ctx, commands.RecordAttendanceCommand{Bucket: bucket, Key: key})
	if err != nil {
		h.logger.Error("Check-in failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return &commands.RecordAttendanceResult{Status: commands.StatusError, Message: err.Error()}, nil
	}
	return result, nil
}

const msgNoRecords = "event contains no S3 records"

// firstObject returns the bucket and decoded key of the first record
func firstObject(event events.S3Event, logger *zap.Logger) (bucket, key string, ok bool) {
	if len(event.Records) == 0 {
		logger.Warn("S3 event without records")
		return "", "", false
	}
	if extra := len(event.Records) - 1; extra > 0 {
		logger.Warn("Ignoring additional S3 records", zap.Int("ignored", extra))
	}

	rec := event.Records[0]
	key = rec.S3.Object.URLDecodedKey
	if key == "" {
		key = rec.S3.Object.Key
	}
	return rec.S3.Bucket.Name, key, true
}
