//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"attendance-backend/application/commands"
	"attendance-backend/application/queries"
	"attendance-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideRekognitionClient,
	ProvideS3Client,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTableProvisioner,
	ProvideEmployeeRepository,
	ProvideAttendanceRepository,
	ProvideFaceCollection,
	ProvideNameResolver,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideMetricsRecorder,
	ProvideClock,
	ProvideTracerProvider,
	ProvideTracer,
	ProvideMatchOptions,
	commands.NewRegisterEmployeeHandler,
	commands.NewRecordAttendanceHandler,
	queries.NewDailyReportHandler,
	queries.NewWeeklyReportHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
