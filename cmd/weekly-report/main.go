// Command weekly-report is the Lambda summarising the Monday to Sunday week
// that contains the requested date.
package main

import (
	"context"
	"log"

	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/di"
	handlers "attendance-backend/interfaces/lambda"

	"github.com/aws/aws-lambda-go/lambda"
)

var (
	container *di.Container
	handler   *handlers.WeeklyReportHandler
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler = handlers.NewWeeklyReportHandler(container.WeeklyReport, container.Logger)
}

func Handler(ctx context.Context, req handlers.ReportRequest) (handlers.Response, error) {
	defer container.Flush(ctx)
	return handler.Handle(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
