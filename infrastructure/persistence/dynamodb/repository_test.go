package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEmployeeRepo(client *mockDynamoDB) *EmployeeRepository {
	return NewEmployeeRepository(client, NewTableProvisioner(client, zap.NewNop()), "people", zap.NewNop())
}

func newAttendanceRepo(client *mockDynamoDB, index string) *AttendanceRepository {
	return NewAttendanceRepository(client, NewTableProvisioner(client, zap.NewNop()), "daily_attendance", index, zap.NewNop())
}

func item(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return av
}

func TestEmployeeRepository_Save(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		id, ok := in.Item["rekognitionId"].(*types.AttributeValueMemberS)
		return ok && id.Value == "face-1" &&
			aws.ToString(in.TableName) == "people" &&
			in.ConditionExpression != nil
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	err := newEmployeeRepo(client).Save(context.Background(), employee.Reconstruct("face-1", "John", "Smith"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestEmployeeRepository_SaveConflict(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

	err := newEmployeeRepo(client).Save(context.Background(), employee.Reconstruct("face-1", "John", "Smith"))
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestEmployeeRepository_GetByFaceID(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return in.Key["rekognitionId"].(*types.AttributeValueMemberS).Value == "face-1"
	})).Return(&dynamodb.GetItemOutput{
		Item: item(t, employeeItem{RekognitionID: "face-1", FirstName: "John", LastName: "Smith"}),
	}, nil)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := newEmployeeRepo(client)

	emp, err := repo.GetByFaceID(context.Background(), "face-1")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", emp.DisplayName())

	_, err = repo.GetByFaceID(context.Background(), "face-unknown")
	assert.ErrorIs(t, err, employee.ErrNotFound)
}

func TestEmployeeRepository_EnsureTableOnce(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("DescribeTable", mock.Anything, mock.Anything).Return(activeTable("people"), nil).Once()

	repo := newEmployeeRepo(client)
	require.NoError(t, repo.EnsureTable(context.Background()))
	require.NoError(t, repo.EnsureTable(context.Background()))

	client.AssertNumberOfCalls(t, "DescribeTable", 1)
}

func newRecord(t *testing.T) *attendance.Record {
	t.Helper()
	rec, err := attendance.NewRecord(
		employee.Reconstruct("face-1", "John", "Smith"),
		time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return rec
}

func TestAttendanceRepository_CreateWritesRecordAndMarker(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
		if len(in.TransactItems) != 2 {
			return false
		}
		marker := in.TransactItems[0].Put
		record := in.TransactItems[1].Put
		return marker.Item["timestamp"].(*types.AttributeValueMemberS).Value == "DAY#2024-03-06" &&
			marker.Item["date"] == nil &&
			marker.ConditionExpression != nil &&
			record.Item["date"].(*types.AttributeValueMemberS).Value == "2024-03-06" &&
			record.Item["dayOfWeek"].(*types.AttributeValueMemberS).Value == "Wednesday"
	})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

	require.NoError(t, newAttendanceRepo(client, "").Create(context.Background(), newRecord(t)))
	client.AssertExpectations(t)
}

func TestAttendanceRepository_CreateDuplicate(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		},
	})

	err := newAttendanceRepo(client, "").Create(context.Background(), newRecord(t))
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
}

func TestAttendanceRepository_CreateDuplicateGenericError(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &smithy.GenericAPIError{
		Code:    "TransactionCanceledException",
		Message: "Transaction cancelled, please refer cancellation reasons for specific reasons [ConditionalCheckFailed, None]",
	})

	err := newAttendanceRepo(client, "").Create(context.Background(), newRecord(t))
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
}

func TestAttendanceRepository_CreateOtherFailure(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := newAttendanceRepo(client, "").Create(context.Background(), newRecord(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, attendance.ErrAlreadyRecorded)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestAttendanceRepository_ExistsForDate(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.Select == types.SelectCount && in.FilterExpression != nil && in.IndexName == nil
	})).Return(&dynamodb.QueryOutput{Count: 1}, nil).Once()

	exists, err := newAttendanceRepo(client, "").ExistsForDate(context.Background(), "face-1", "2024-03-06")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAttendanceRepository_ExistsForDatePaginates(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Count:            0,
		LastEvaluatedKey: map[string]types.AttributeValue{"employeeId": &types.AttributeValueMemberS{Value: "face-1"}},
	}, nil).Once()
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Count: 0}, nil).Once()

	exists, err := newAttendanceRepo(client, "").ExistsForDate(context.Background(), "face-1", "2024-03-06")
	require.NoError(t, err)
	assert.False(t, exists)
	client.AssertNumberOfCalls(t, "Query", 2)
}

func TestAttendanceRepository_ListByDateScan(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return aws.ToString(in.TableName) == "daily_attendance" && in.FilterExpression != nil
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			item(t, attendanceItem{EmployeeID: "face-1", Timestamp: "2024-03-06T09:00:00.000000Z", Date: "2024-03-06", DayOfWeek: "Wednesday", Time: "09:00:00", FirstName: "John", LastName: "Smith"}),
			item(t, dayMarkerItem{EmployeeID: "face-1", Timestamp: "DAY#2024-03-06", RecordType: recordTypeDayMarker}),
		},
	}, nil).Once()

	recs, err := newAttendanceRepo(client, "").ListByDate(context.Background(), "2024-03-06")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "John Smith", recs[0].DisplayName())
	assert.Equal(t, "09:00:00", recs[0].Time())
}

func TestAttendanceRepository_ListByDateIndex(t *testing.T) {
	client := new(mockDynamoDB)
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "date-index"
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			item(t, attendanceItem{EmployeeID: "face-2", Timestamp: "2024-03-06T10:00:00.000000Z", Date: "2024-03-06", Time: "10:00:00", FirstName: "Ann"}),
		},
	}, nil)

	recs, err := newAttendanceRepo(client, "date-index").ListByDate(context.Background(), "2024-03-06")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	client.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestAttendanceRepository_ListByDateRange(t *testing.T) {
	t.Run("scan with between", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{}, nil).Once()

		recs, err := newAttendanceRepo(client, "").ListByDateRange(context.Background(), "2024-03-04", "2024-03-10")
		require.NoError(t, err)
		assert.Empty(t, recs)

		in := client.Calls[0].Arguments.Get(1).(*dynamodb.ScanInput)
		assert.Contains(t, aws.ToString(in.FilterExpression), "BETWEEN")
	})

	t.Run("index walks each day", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		_, err := newAttendanceRepo(client, "date-index").ListByDateRange(context.Background(), "2024-03-04", "2024-03-10")
		require.NoError(t, err)
		client.AssertNumberOfCalls(t, "Query", 7)
	})

	t.Run("scan failure", func(t *testing.T) {
		client := new(mockDynamoDB)
		client.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := newAttendanceRepo(client, "").ListByDateRange(context.Background(), "2024-03-04", "2024-03-10")
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	})
}
