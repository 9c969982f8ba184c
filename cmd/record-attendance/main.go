// Command record-attendance is the Lambda behind the check-in bucket's
// object-created notification.
package main

import (
	"context"
	"log"
	"time"

	"attendance-backend/application/commands"
	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/di"
	handlers "attendance-backend/interfaces/lambda"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var (
	container *di.Container
	handler   *handlers.AttendanceHandler
)

func init() {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler = handlers.NewAttendanceHandler(container.RecordAttendance, container.Logger)

	container.Logger.Info("Cold start completed", zap.Duration("duration", time.Since(start)))
}

// Handler matches the uploaded snapshot and records the check-in
func Handler(ctx context.Context, event events.S3Event) (*commands.RecordAttendanceResult, error) {
	defer container.Flush(ctx)
	return handler.Handle(ctx, event)
}

func main() {
	lambda.Start(Handler)
}
