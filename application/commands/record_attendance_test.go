package commands

import (
	"context"
	"errors"
	"testing"

	"attendance-backend/application/ports"
	"attendance-backend/application/ports/mocks"
	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type attendanceFixture struct {
	faces      *mocks.FaceCollection
	employees  *mocks.EmployeeRepository
	attendance *mocks.AttendanceRepository
	publisher  *mocks.EventPublisher
	metrics    *mocks.MetricsRecorder
	handler    *RecordAttendanceHandler
	img        ports.ImageRef
	cmd        RecordAttendanceCommand
}

func newAttendanceFixture() *attendanceFixture {
	f := &attendanceFixture{
		faces:      new(mocks.FaceCollection),
		employees:  new(mocks.EmployeeRepository),
		attendance: new(mocks.AttendanceRepository),
		publisher:  new(mocks.EventPublisher),
		metrics:    new(mocks.MetricsRecorder),
		img:        ports.ImageRef{Bucket: "checkins", Key: "cam1/0001.jpg"},
		cmd:        RecordAttendanceCommand{Bucket: "checkins", Key: "cam1/0001.jpg"},
	}
	f.metrics.On("RecordOutcome", mock.Anything, WorkflowRecordAttendance, mock.Anything).Return()
	f.metrics.On("RecordDuration", mock.Anything, WorkflowRecordAttendance, mock.Anything).Return()
	f.attendance.On("EnsureTable", mock.Anything).Return(nil)

	f.handler = NewRecordAttendanceHandler(
		f.faces, f.employees, f.attendance, f.publisher, f.metrics,
		mocks.Clock{T: fixedNow},
		noop.NewTracerProvider().Tracer("test"),
		zap.NewNop(),
		MatchOptions{Threshold: 90, AutoProvision: true},
	)
	return f
}

func (f *attendanceFixture) matches(faceID string) {
	f.faces.On("SearchByImage", mock.Anything, f.img, 1, 90.0).
		Return([]ports.FaceMatch{{FaceID: faceID, Similarity: 97.5}}, nil)
}

func TestRecordAttendance_Success(t *testing.T) {
	f := newAttendanceFixture()
	f.matches("face-1")
	f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(employee.Reconstruct("face-1", "John", "Smith"), nil)
	f.attendance.On("ExistsForDate", mock.Anything, "face-1", "2024-03-06").Return(false, nil)
	f.attendance.On("Create", mock.Anything, mock.MatchedBy(func(r *attendance.Record) bool {
		return r.EmployeeID() == "face-1" &&
			r.Date() == "2024-03-06" &&
			r.DayOfWeek() == "Wednesday" &&
			r.Time() == "09:15:00" &&
			r.FirstName() == "John" && r.LastName() == "Smith"
	})).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := f.handler.Handle(context.Background(), f.cmd)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "John Smith", res.Employee)
	assert.Equal(t, "2024-03-06T09:15:00.000000Z", res.Timestamp)
	f.attendance.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestRecordAttendance_NoMatch(t *testing.T) {
	for _, searchErr := range []error{nil, ports.ErrNoFaceDetected} {
		f := newAttendanceFixture()
		f.faces.On("SearchByImage", mock.Anything, f.img, 1, 90.0).Return([]ports.FaceMatch{}, searchErr)

		res, err := f.handler.Handle(context.Background(), f.cmd)
		require.NoError(t, err)
		assert.Equal(t, StatusNoMatch, res.Status)
		f.employees.AssertNotCalled(t, "GetByFaceID", mock.Anything, mock.Anything)
	}
}

func TestRecordAttendance_UnknownEmployee(t *testing.T) {
	f := newAttendanceFixture()
	f.matches("face-orphan")
	f.employees.On("GetByFaceID", mock.Anything, "face-orphan").Return(nil, employee.ErrNotFound)

	res, err := f.handler.Handle(context.Background(), f.cmd)
	require.NoError(t, err)

	assert.Equal(t, StatusUnknownEmployee, res.Status)
	f.attendance.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.attendance.AssertNotCalled(t, "ExistsForDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordAttendance_DuplicateFromPreCheck(t *testing.T) {
	f := newAttendanceFixture()
	f.matches("face-1")
	f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(employee.Reconstruct("face-1", "John", "Smith"), nil)
	f.attendance.On("ExistsForDate", mock.Anything, "face-1", "2024-03-06").Return(true, nil)

	res, err := f.handler.Handle(context.Background(), f.cmd)
	require.NoError(t, err)

	assert.Equal(t, StatusAlreadyExists, res.Status)
	assert.Equal(t, "John Smith", res.Employee)
	assert.Equal(t, "2024-03-06", res.Date)
	f.attendance.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordAttendance_DuplicateFromConditionalWrite(t *testing.T) {
	f := newAttendanceFixture()
	f.matches("face-1")
	f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(employee.Reconstruct("face-1", "John", "Smith"), nil)
	f.attendance.On("ExistsForDate", mock.Anything, "face-1", "2024-03-06").Return(false, nil)
	f.attendance.On("Create", mock.Anything, mock.Anything).Return(attendance.ErrAlreadyRecorded)

	res, err := f.handler.Handle(context.Background(), f.cmd)
	require.NoError(t, err)

	assert.Equal(t, StatusAlreadyExists, res.Status)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRecordAttendance_PreCheckFailsOpen(t *testing.T) {
	f := newAttendanceFixture()
	f.matches("face-1")
	f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(employee.Reconstruct("face-1", "Ann", ""), nil)
	f.attendance.On("ExistsForDate", mock.Anything, "face-1", "2024-03-06").Return(false, errors.New("throttled"))
	f.attendance.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	res, err := f.handler.Handle(context.Background(), f.cmd)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Ann", res.Employee)
	f.attendance.AssertExpectations(t)
}

func TestRecordAttendance_ServiceErrors(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		f := newAttendanceFixture()
		f.faces.On("SearchByImage", mock.Anything, f.img, 1, 90.0).Return(nil, errors.New("rekognition down"))

		_, err := f.handler.Handle(context.Background(), f.cmd)
		require.Error(t, err)
		f.metrics.AssertCalled(t, "RecordOutcome", mock.Anything, WorkflowRecordAttendance, StatusError)
	})

	t.Run("lookup", func(t *testing.T) {
		f := newAttendanceFixture()
		f.matches("face-1")
		f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(nil, errors.New("dynamo down"))

		_, err := f.handler.Handle(context.Background(), f.cmd)
		require.Error(t, err)
		f.attendance.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("write", func(t *testing.T) {
		f := newAttendanceFixture()
		f.matches("face-1")
		f.employees.On("GetByFaceID", mock.Anything, "face-1").Return(employee.Reconstruct("face-1", "A", "B"), nil)
		f.attendance.On("ExistsForDate", mock.Anything, "face-1", "2024-03-06").Return(false, nil)
		f.attendance.On("Create", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

		_, err := f.handler.Handle(context.Background(), f.cmd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write attendance")
	})
}
