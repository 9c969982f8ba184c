package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const recordTypeDayMarker = "DAY_MARKER"

// AttendanceRepository stores check-ins in the attendance table. Next to each
// record it keeps a day marker item (sort key DAY#<date>) that makes the
// one-record-per-day rule a storage constraint.
type AttendanceRepository struct {
	client      DynamoDBAPI
	provisioner *TableProvisioner
	tableName   string
	dateIndex   string
	logger      *zap.Logger
	ensured     ensureOnce
}

// attendanceItem represents the DynamoDB item structure for a check-in
type attendanceItem struct {
	EmployeeID string `dynamodbav:"employeeId"`
	Timestamp  string `dynamodbav:"timestamp"`
	Date       string `dynamodbav:"date"`
	DayOfWeek  string `dynamodbav:"dayOfWeek"`
	Time       string `dynamodbav:"time"`
	FirstName  string `dynamodbav:"firstName"`
	LastName   string `dynamodbav:"lastName"`
}

// dayMarkerItem has no date attribute so it never shows up in report reads
// or in the date index
type dayMarkerItem struct {
	EmployeeID string `dynamodbav:"employeeId"`
	Timestamp  string `dynamodbav:"timestamp"`
	RecordType string `dynamodbav:"recordType"`
	RecordedAt string `dynamodbav:"recordedAt"`
}

// NewAttendanceRepository creates a new attendance repository. dateIndex is
// optional.
func NewAttendanceRepository(client DynamoDBAPI, provisioner *TableProvisioner, tableName, dateIndex string, logger *zap.Logger) *AttendanceRepository {
	return &AttendanceRepository{
		client:      client,
		provisioner: provisioner,
		tableName:   tableName,
		dateIndex:   dateIndex,
		logger:      logger,
	}
}

var _ ports.AttendanceRepository = (*AttendanceRepository)(nil)

// EnsureTable creates the attendance table once per process
func (r *AttendanceRepository) EnsureTable(ctx context.Context) error {
	return r.ensured.Do(func() error {
		return r.provisioner.EnsureTable(ctx, AttendanceSchema(r.tableName, r.dateIndex))
	})
}

// ExistsForDate queries the employee's partition for a record on date
func (r *AttendanceRepository) ExistsForDate(ctx context.Context, employeeID, date string) (bool, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrEmployeeID).Equal(expression.Value(employeeID))).
		WithFilter(expression.Name(attrDate).Equal(expression.Value(date))).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, pkgerrors.NewDatabaseError("Query", err)
		}
		if page.Count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Create writes the record and its day marker in one transaction. A marker
// that already exists cancels the transaction and yields
// attendance.ErrAlreadyRecorded.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) error {
	recordAV, err := attributevalue.MarshalMap(attendanceItem{
		EmployeeID: rec.EmployeeID(),
		Timestamp:  rec.Timestamp(),
		Date:       rec.Date(),
		DayOfWeek:  rec.DayOfWeek(),
		Time:       rec.Time(),
		FirstName:  rec.FirstName(),
		LastName:   rec.LastName(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal attendance record: %w", err)
	}

	markerAV, err := attributevalue.MarshalMap(dayMarkerItem{
		EmployeeID: rec.EmployeeID(),
		Timestamp:  attendance.DayMarkerKey(rec.Date()),
		RecordType: recordTypeDayMarker,
		RecordedAt: rec.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal day marker: %w", err)
	}

	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrEmployeeID))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     markerAV,
					ConditionExpression:      notExists.Condition(),
					ExpressionAttributeNames: notExists.Names(),
				},
			},
			{
				Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     recordAV,
					ConditionExpression:      notExists.Condition(),
					ExpressionAttributeNames: notExists.Names(),
				},
			},
		},
	})
	if err != nil {
		if isConditionalCancel(err) {
			return attendance.ErrAlreadyRecorded
		}
		r.logger.Error("Failed to write attendance",
			zap.String("employeeId", rec.EmployeeID()),
			zap.String("date", rec.Date()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("TransactWriteItems", err)
	}

	return nil
}

// ListByDate returns every record on date, via the date index when configured
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	if r.dateIndex != "" {
		return r.queryDate(ctx, date)
	}
	return r.scan(ctx, expression.Name(attrDate).Equal(expression.Value(date)))
}

// ListByDateRange returns every record with start <= date <= end
func (r *AttendanceRepository) ListByDateRange(ctx context.Context, start, end string) ([]*attendance.Record, error) {
	if r.dateIndex == "" {
		return r.scan(ctx, expression.Name(attrDate).Between(expression.Value(start), expression.Value(end)))
	}

	// The index is keyed by a single date, so walk the range a day at a time
	first, err := attendance.ParseDate(start)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	last, err := attendance.ParseDate(end)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	var out []*attendance.Record
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		recs, err := r.queryDate(ctx, d.Format(attendance.DateLayout))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (r *AttendanceRepository) queryDate(ctx context.Context, date string) ([]*attendance.Record, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrDate).Equal(expression.Value(date))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.dateIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("Query", err)
		}
		items = append(items, page.Items...)
	}
	return toRecords(items)
}

func (r *AttendanceRepository) scan(ctx context.Context, filter expression.ConditionBuilder) ([]*attendance.Record, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("Scan", err)
		}
		pages++
		items = append(items, page.Items...)
	}

	r.logger.Debug("Scanned attendance table",
		zap.String("table", r.tableName),
		zap.Int("pages", pages),
		zap.Int("items", len(items)),
	)
	return toRecords(items)
}

func toRecords(items []map[string]types.AttributeValue) ([]*attendance.Record, error) {
	var rows []attendanceItem
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attendance records: %w", err)
	}

	out := make([]*attendance.Record, 0, len(rows))
	for _, row := range rows {
		if attendance.IsDayMarkerKey(row.Timestamp) {
			continue
		}
		out = append(out, attendance.Reconstruct(
			row.EmployeeID, row.Timestamp, row.Date, row.DayOfWeek, row.Time, row.FirstName, row.LastName,
		))
	}
	return out, nil
}

func isConditionalCancel(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}

	// Some endpoints (DynamoDB Local) report the cancellation only through the
	// error code
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "TransactionCanceledException" {
		return strings.Contains(apiErr.ErrorMessage(), "ConditionalCheckFailed")
	}
	return false
}
