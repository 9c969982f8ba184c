package di

import (
	"context"
	"testing"
	"time"

	"attendance-backend/application/commands"
	"attendance-backend/application/queries"
	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/messaging/eventbridge"
	"attendance-backend/infrastructure/persistence/memory"
	"attendance-backend/infrastructure/rekognition"
	"attendance-backend/infrastructure/storage"
	"attendance-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.AWSRegion = "us-east-1"
	cfg.StorageBackend = config.StorageMemory
	cfg.AutoCreateTables = true
	return cfg
}

func TestInitializeContainer_Memory(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	ctx := context.Background()
	c, err := InitializeContainer(ctx, memoryConfig())
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	assert.IsType(t, &memory.FaceCollection{}, c.Faces)
	assert.IsType(t, &memory.EmployeeStore{}, c.Employees)
	require.NoError(t, c.Provision(ctx))

	reg, err := c.RegisterEmployee.Handle(ctx, commands.RegisterEmployeeCommand{Bucket: "enroll", Key: "John_Smith.jpg"})
	require.NoError(t, err)
	assert.Equal(t, commands.StatusRegistered, reg.Status)

	res, err := c.RecordAttendance.Handle(ctx, commands.RecordAttendanceCommand{Bucket: "checkins", Key: "John_Smith.jpg"})
	require.NoError(t, err)
	assert.Equal(t, commands.StatusSuccess, res.Status)

	today := time.Now().UTC().Format("2006-01-02")
	daily, err := c.DailyReport.Handle(ctx, queries.DailyReportQuery{Date: today})
	require.NoError(t, err)
	assert.Equal(t, 1, daily.TotalPresent)

	c.Flush(ctx)
}

func TestProvideLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"

	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideSelections(t *testing.T) {
	cfg := config.Default()
	logger := zap.NewNop()

	assert.IsType(t, storage.FilenameResolver{}, ProvideNameResolver(cfg, nil, logger))
	cfg.NameSource = config.NameSourceMetadata
	assert.IsType(t, &storage.MetadataResolver{}, ProvideNameResolver(cfg, nil, logger))

	assert.IsType(t, eventbridge.NopPublisher{}, ProvideEventPublisher(cfg, nil, logger))
	cfg.EventBusName = "attendance"
	assert.IsType(t, &eventbridge.Publisher{}, ProvideEventPublisher(cfg, nil, logger))

	collector := ProvideCollector(cfg)
	assert.IsType(t, observability.NopMetrics{}, ProvideMetricsRecorder(cfg, nil, collector, logger))
	cfg.MetricsProvider = config.MetricsPrometheus
	assert.Same(t, collector, ProvideMetricsRecorder(cfg, nil, collector, logger))
	cfg.MetricsProvider = config.MetricsCloudWatch
	assert.IsType(t, &observability.Metrics{}, ProvideMetricsRecorder(cfg, nil, collector, logger))

	cfg.StorageBackend = config.StorageDynamoDB
	assert.IsType(t, &rekognition.BreakerCollection{}, ProvideFaceCollection(cfg, nil, logger))
}

func TestProvideClock(t *testing.T) {
	cfg := config.Default()
	cfg.TimeZone = "America/New_York"

	now := ProvideClock(cfg).Now()
	assert.Equal(t, "America/New_York", now.Location().String())
}
