package di

import (
	"context"
	"fmt"

	"attendance-backend/application/commands"
	"attendance-backend/application/ports"
	"attendance-backend/infrastructure/clock"
	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/messaging/eventbridge"
	"attendance-backend/infrastructure/persistence/dynamodb"
	"attendance-backend/infrastructure/persistence/memory"
	"attendance-backend/infrastructure/rekognition"
	"attendance-backend/infrastructure/storage"
	"attendance-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ServiceName identifies this backend in traces
const ServiceName = "attendance-backend"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}

	return zcfg.Build(zap.Fields(zap.String("service", ServiceName)))
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableXRay {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideRekognitionClient creates a Rekognition client
func ProvideRekognitionClient(awsCfg aws.Config) *awsrekognition.Client {
	return awsrekognition.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTableProvisioner creates the table provisioner shared by both repositories
func ProvideTableProvisioner(client *awsdynamodb.Client, logger *zap.Logger) *dynamodb.TableProvisioner {
	return dynamodb.NewTableProvisioner(client, logger)
}

// ProvideEmployeeRepository creates the identity store
func ProvideEmployeeRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	provisioner *dynamodb.TableProvisioner,
	logger *zap.Logger,
) ports.EmployeeRepository {
	if cfg.StorageBackend == config.StorageMemory {
		return memory.NewEmployeeStore()
	}
	return dynamodb.NewEmployeeRepository(client, provisioner, cfg.PeopleTable, logger)
}

// ProvideAttendanceRepository creates the attendance store
func ProvideAttendanceRepository(
	cfg *config.Config,
	client *awsdynamodb.Client,
	provisioner *dynamodb.TableProvisioner,
	logger *zap.Logger,
) ports.AttendanceRepository {
	if cfg.StorageBackend == config.StorageMemory {
		return memory.NewAttendanceStore()
	}
	return dynamodb.NewAttendanceRepository(client, provisioner, cfg.AttendanceTable, cfg.DateIndexName, logger)
}

// ProvideFaceCollection creates the face collection behind a circuit breaker
func ProvideFaceCollection(cfg *config.Config, client *awsrekognition.Client, logger *zap.Logger) ports.FaceCollection {
	if cfg.StorageBackend == config.StorageMemory {
		return memory.NewFaceCollection()
	}

	collection := rekognition.NewCollection(client, cfg.CollectionID, logger)
	return rekognition.NewBreakerCollection(collection, rekognition.BreakerConfig{
		Name:             "rekognition",
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		MinRequests:      cfg.Breaker.MinRequests,
	}, logger)
}

// ProvideNameResolver picks how enrollment names are derived
func ProvideNameResolver(cfg *config.Config, client *awss3.Client, logger *zap.Logger) ports.NameResolver {
	if cfg.NameSource == config.NameSourceMetadata {
		return storage.NewMetadataResolver(client, logger)
	}
	return storage.FilenameResolver{}
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
}

// ProvideCollector creates the Prometheus collector. It is always built so
// /metrics can be mounted; it only receives samples when selected.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideMetricsRecorder selects the metrics backend
func ProvideMetricsRecorder(
	cfg *config.Config,
	client *awscloudwatch.Client,
	collector *observability.Collector,
	logger *zap.Logger,
) ports.MetricsRecorder {
	switch cfg.MetricsProvider {
	case config.MetricsCloudWatch:
		return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
	case config.MetricsPrometheus:
		return collector
	default:
		return observability.NopMetrics{}
	}
}

// ProvideClock returns a clock in the configured time zone
func ProvideClock(cfg *config.Config) ports.Clock {
	return clock.System{Location: cfg.Location()}
}

// ProvideTracerProvider initialises OpenTelemetry tracing
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
}

// ProvideTracer returns the tracer the workflows use
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideMatchOptions maps configuration onto the workflow options
func ProvideMatchOptions(cfg *config.Config) commands.MatchOptions {
	return commands.MatchOptions{
		Threshold:     cfg.MatchThreshold,
		AutoProvision: cfg.AutoCreateTables,
	}
}
