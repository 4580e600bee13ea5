package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/transcoder"
	"github.com/vrsio/video-backend/internal/videos"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// raceStatusRepo tracks a single file's status the way the store would,
// so the status guard actually bites once the first worker moves it.
type raceStatusRepo struct {
	videos.Repository

	mu                sync.Mutex
	file              *models.VideoFile
	transcodingStarts int
}

func (r *raceStatusRepo) GetVideoFileByID(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := *r.file
	return &f, nil
}

func (r *raceStatusRepo) UpdateStatus(ctx context.Context, videoID, fileID uuid.UUID, status models.VideoStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == models.StatusTranscoding {
		r.transcodingStarts++
	}
	r.file.Status = status
	return nil
}

func (r *raceStatusRepo) SetTranscodeResult(ctx context.Context, videoID, fileID uuid.UUID, outputDir, resolution string, duration int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.file.Status = models.StatusPendingUpload
	r.file.Resolution = resolution
	r.file.Duration = duration
	return nil
}

// raceLockRepo is a process-local stand-in for the leased lock.
type raceLockRepo struct {
	videos.RedisRepository

	mu   sync.Mutex
	held map[string]bool
}

func (r *raceLockRepo) TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[key] {
		return false, nil
	}
	r.held[key] = true
	return true, nil
}

func (r *raceLockRepo) Unlock(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, key)
	return nil
}

func (r *raceLockRepo) AppendStageEvent(ctx context.Context, event *models.TranscodeCompleteEvent) (string, error) {
	return "1-0", nil
}

type stubTranscoder struct{}

func (stubTranscoder) ConvertToHLS(ctx context.Context, inputPath string, fileID uuid.UUID) (*transcoder.Result, error) {
	// Long enough for every goroutine to hit the lock or the guard.
	time.Sleep(200 * time.Millisecond)
	return &transcoder.Result{OutputDir: "/tmp/out", Resolutions: []string{"480p", "720p"}, Duration: 125}, nil
}

func TestTranscodeWorker_DuplicateDeliveryTranscodesOnce(t *testing.T) {
	req := testRequest()
	videoRepo := &raceStatusRepo{
		file: &models.VideoFile{
			FileID:  req.VideoFileID,
			VideoID: req.VideoID,
			Status:  models.StatusPendingTranscode,
		},
	}
	redisRepo := &raceLockRepo{held: make(map[string]bool)}
	cfg := testConfig()
	w := NewTranscodeWorker(cfg, testLogger(cfg), videoRepo, redisRepo, stubTranscoder{})

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- w.Handle(context.Background(), req)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, videoRepo.transcodingStarts)
	require.Equal(t, models.StatusPendingUpload, videoRepo.file.Status)
	require.Equal(t, "480p,720p", videoRepo.file.Resolution)
	require.Equal(t, int64(125), videoRepo.file.Duration)
	require.Empty(t, redisRepo.held)
}
