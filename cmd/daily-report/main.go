// Command daily-report is the Lambda returning who checked in on a date.
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
	handler   *handlers.DailyReportHandler
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

	handler = handlers.NewDailyReportHandler(container.DailyReport, container.Logger)
}

func Handler(ctx context.Context, req handlers.ReportRequest) (handlers.Response, error) {
	defer container.Flush(ctx)
	return handler.Handle(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
