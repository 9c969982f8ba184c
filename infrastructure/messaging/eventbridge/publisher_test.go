package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"attendance-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

var now = time.Date(2024, 3, 6, 9, 15, 0, 0, time.UTC)

func TestPublish_Entry(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "attendance-bus", "attendance.backend", zap.NewNop())
	evt := events.NewAttendanceRecorded("face-1", "2024-03-06", "2024-03-06T09:15:00.000000Z", "John Smith", now)
	require.NoError(t, p.Publish(context.Background(), evt))

	in := client.Calls[0].Arguments.Get(1).(*eventbridge.PutEventsInput)
	require.Len(t, in.Entries, 1)
	entry := in.Entries[0]
	assert.Equal(t, "attendance-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, "attendance.backend", aws.ToString(entry.Source))
	assert.Equal(t, events.TypeAttendanceRecorded, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "face-1", detail["employee_id"])
	assert.Equal(t, "2024-03-06", detail["date"])
}

func TestPublish_Batches(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)

	evts := make([]events.DomainEvent, 0, 23)
	for i := 0; i < 23; i++ {
		evts = append(evts, events.NewEmployeeRegistered(fmt.Sprintf("face-%d", i), "A", "B", "A_B.jpg", now))
	}

	p := NewPublisher(client, "bus", "src", zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), evts...))

	client.AssertNumberOfCalls(t, "PutEvents", 3)
	last := client.Calls[2].Arguments.Get(1).(*eventbridge.PutEventsInput)
	assert.Len(t, last.Entries, 3)
}

func TestPublish_Empty(t *testing.T) {
	client := new(mockEventBridge)
	p := NewPublisher(client, "bus", "src", zap.NewNop())

	require.NoError(t, p.Publish(context.Background()))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
}

func TestPublish_FailedEntries(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
		},
	}, nil)

	p := NewPublisher(client, "bus", "src", zap.NewNop())
	err := p.Publish(context.Background(), events.NewEmployeeRegistered("face-1", "A", "B", "A_B.jpg", now))
	assert.EqualError(t, err, "1 events failed to publish")
}

func TestPublish_ClientError(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("network"))

	p := NewPublisher(client, "bus", "src", zap.NewNop())
	err := p.Publish(context.Background(), events.NewEmployeeRegistered("face-1", "A", "B", "A_B.jpg", now))
	assert.ErrorContains(t, err, "network")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), events.NewEmployeeRegistered("f", "A", "", "A.jpg", now)))
}
