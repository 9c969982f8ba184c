package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used for metrics.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes workflow outcomes to CloudWatch
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordOutcome counts one workflow result, dimensioned by workflow and status
func (m *Metrics) RecordOutcome(ctx context.Context, workflow, status string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("WorkflowOutcome"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Workflow"), Value: aws.String(workflow)},
			{Name: aws.String("Status"), Value: aws.String(status)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(m.now()),
	})
}

// RecordDuration records how long a workflow invocation took
func (m *Metrics) RecordDuration(ctx context.Context, workflow string, d time.Duration) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("WorkflowLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Workflow"), Value: aws.String(workflow)},
		},
		Value:     aws.Float64(float64(d.Milliseconds())),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(m.now()),
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	if m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	}

	// Metrics never fail the workflow
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to send metrics",
			zap.String("metric", aws.ToString(datum.MetricName)),
			zap.Error(err),
		)
	}
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordOutcome(context.Context, string, string)          {}
func (NopMetrics) RecordDuration(context.Context, string, time.Duration) {}
