package rekognition

import (
	"context"
	"errors"
	"time"

	"attendance-backend/application/ports"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds circuit breaker settings
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// BreakerCollection guards a FaceCollection with a circuit breaker. An image
// without a face is a normal answer and never counts as a failure.
type BreakerCollection struct {
	next   ports.FaceCollection
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerCollection wraps next
func NewBreakerCollection(next ports.FaceCollection, config BreakerConfig, logger *zap.Logger) *BreakerCollection {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ports.ErrNoFaceDetected)
		},
	})

	return &BreakerCollection{next: next, cb: cb, logger: logger}
}

var _ ports.FaceCollection = (*BreakerCollection)(nil)

func (b *BreakerCollection) EnsureCollection(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.EnsureCollection(ctx)
	})
	return err
}

func (b *BreakerCollection) SearchByImage(ctx context.Context, img ports.ImageRef, maxFaces int, threshold float64) ([]ports.FaceMatch, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.SearchByImage(ctx, img, maxFaces, threshold)
	})
	if err != nil {
		return nil, err
	}
	matches, _ := res.([]ports.FaceMatch)
	return matches, nil
}

func (b *BreakerCollection) IndexFace(ctx context.Context, img ports.ImageRef) (string, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.IndexFace(ctx, img)
	})
	if err != nil {
		return "", err
	}
	faceID, _ := res.(string)
	return faceID, nil
}

// State reports the breaker state
func (b *BreakerCollection) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerCollection) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("Face collection unavailable", zap.String("breaker", b.cb.Name()), zap.Error(err))
		return nil, pkgerrors.NewUnavailableError("rekognition").WithCause(err)
	}
	return res, err
}
