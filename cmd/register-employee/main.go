// Command register-employee is the Lambda behind the enrollment bucket's
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
	handler   *handlers.EnrollmentHandler
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

	handler = handlers.NewEnrollmentHandler(container.RegisterEmployee, container.Logger)

	container.Logger.Info("Cold start completed", zap.Duration("duration", time.Since(start)))
}

// Handler registers the employee pictured in the uploaded object
func Handler(ctx context.Context, event events.S3Event) (*commands.RegisterEmployeeResult, error) {
	defer container.Flush(ctx)
	return handler.Handle(ctx, event)
}

func main() {
	lambda.Start(Handler)
}
