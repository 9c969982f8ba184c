package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"attendance-backend/application/ports"
	"attendance-backend/domain/attendance"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeStore(t *testing.T) {
	ctx := context.Background()
	store := NewEmployeeStore()

	require.NoError(t, store.Save(ctx, employee.Reconstruct("face-1", "John", "Smith")))

	err := store.Save(ctx, employee.Reconstruct("face-1", "Other", "Name"))
	assert.True(t, pkgerrors.IsConflict(err))

	emp, err := store.GetByFaceID(ctx, "face-1")
	require.NoError(t, err)
	assert.Equal(t, "John", emp.FirstName())

	_, err = store.GetByFaceID(ctx, "face-2")
	assert.ErrorIs(t, err, employee.ErrNotFound)
	assert.Equal(t, 1, store.Count())
}

func TestEmployeeStore_InjectedErrors(t *testing.T) {
	store := NewEmployeeStore()
	boom := errors.New("boom")

	store.SetError("GetByFaceID", boom)
	_, err := store.GetByFaceID(context.Background(), "face-1")
	assert.ErrorIs(t, err, boom)

	store.ClearErrors()
	_, err = store.GetByFaceID(context.Background(), "face-1")
	assert.ErrorIs(t, err, employee.ErrNotFound)
}

func record(t *testing.T, faceID string, at time.Time) *attendance.Record {
	t.Helper()
	rec, err := attendance.NewRecord(employee.Reconstruct(faceID, "John", "Smith"), at)
	require.NoError(t, err)
	return rec
}

func TestAttendanceStore_OnePerDay(t *testing.T) {
	ctx := context.Background()
	store := NewAttendanceStore()
	morning := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, record(t, "face-1", morning)))
	assert.ErrorIs(t, store.Create(ctx, record(t, "face-1", morning.Add(3*time.Hour))), attendance.ErrAlreadyRecorded)
	require.NoError(t, store.Create(ctx, record(t, "face-1", morning.AddDate(0, 0, 1))))
	require.NoError(t, store.Create(ctx, record(t, "face-2", morning)))

	exists, err := store.ExistsForDate(ctx, "face-1", "2024-03-06")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsForDate(ctx, "face-1", "2024-03-08")
	require.NoError(t, err)
	assert.False(t, exists)

	day, err := store.ListByDate(ctx, "2024-03-06")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	week, err := store.ListByDateRange(ctx, "2024-03-04", "2024-03-10")
	require.NoError(t, err)
	assert.Len(t, week, 3)
}

func TestAttendanceStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewAttendanceStore()
	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	recs := make([]*attendance.Record, 20)
	for i := range recs {
		recs[i] = record(t, "face-1", at.Add(time.Duration(i)*time.Second))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for _, rec := range recs {
		wg.Add(1)
		go func(rec *attendance.Record) {
			defer wg.Done()
			if err := store.Create(ctx, rec); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(rec)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, store.CountFor("face-1", "2024-03-06"))
}

func TestFaceCollection(t *testing.T) {
	ctx := context.Background()
	faces := NewFaceCollection()
	enroll := ports.ImageRef{Bucket: "enroll", Key: "John_Smith.jpg"}

	matches, err := faces.SearchByImage(ctx, enroll, 1, 90)
	require.NoError(t, err)
	assert.Empty(t, matches)

	faceID, err := faces.IndexFace(ctx, enroll)
	require.NoError(t, err)
	assert.NotEmpty(t, faceID)

	matches, err = faces.SearchByImage(ctx, ports.ImageRef{Bucket: "checkins", Key: "cam/john_smith.png"}, 1, 90)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, faceID, matches[0].FaceID)

	_, err = faces.SearchByImage(ctx, ports.ImageRef{Bucket: "checkins", Key: ""}, 1, 90)
	assert.ErrorIs(t, err, ports.ErrNoFaceDetected)

	_, err = faces.IndexFace(ctx, ports.ImageRef{Bucket: "enroll", Key: ".jpg"})
	assert.ErrorIs(t, err, ports.ErrNoFaceDetected)

	assert.Equal(t, []string{faceID}, faces.FaceIDs())
}
