package viewcount

import (
	"context"
	"errors"
	"testing"

	"github.com/vrsio/video-backend/internal/videos"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFlusher_Flush_DrainsAccumulator(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	acc := NewAccumulator()
	f := NewFlusher(testLogger(), videoRepo, acc)

	a, b := uuid.New(), uuid.New()
	acc.Add(a, 3)
	acc.Add(b, 5)

	videoRepo.On("IncrementViewCounts", mock.Anything, map[uuid.UUID]int64{a: 3, b: 5}).
		Return(int64(2), nil)

	f.Flush(context.Background())
	require.Equal(t, 0, acc.Len())
	videoRepo.AssertExpectations(t)
}

func TestFlusher_Flush_EmptySkipsStore(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	f := NewFlusher(testLogger(), videoRepo, NewAccumulator())

	f.Flush(context.Background())
	videoRepo.AssertNotCalled(t, "IncrementViewCounts", mock.Anything, mock.Anything)
}

func TestFlusher_Flush_FailureMergesBack(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	acc := NewAccumulator()
	f := NewFlusher(testLogger(), videoRepo, acc)

	a := uuid.New()
	acc.Add(a, 3)

	videoRepo.On("IncrementViewCounts", mock.Anything, mock.Anything).
		Return(int64(0), errors.New("db down")).Once()

	f.Flush(context.Background())

	// The failed batch plus anything that arrived meanwhile is retried whole.
	acc.Add(a, 1)
	videoRepo.On("IncrementViewCounts", mock.Anything, map[uuid.UUID]int64{a: 4}).
		Return(int64(1), nil).Once()

	f.Flush(context.Background())
	require.Equal(t, 0, acc.Len())
	videoRepo.AssertExpectations(t)
}

func TestFlusher_Flush_ZeroAffectedMergesBack(t *testing.T) {
	videoRepo := videos.NewMockRepository()
	acc := NewAccumulator()
	f := NewFlusher(testLogger(), videoRepo, acc)

	a := uuid.New()
	acc.Add(a, 2)

	videoRepo.On("IncrementViewCounts", mock.Anything, mock.Anything).Return(int64(0), nil)

	f.Flush(context.Background())
	require.Equal(t, 1, acc.Len())
}
