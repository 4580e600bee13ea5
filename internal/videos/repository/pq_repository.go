package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vrsio/video-backend/internal/models"
	"github.com/vrsio/video-backend/internal/videos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type videoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) videos.Repository {
	return &videoRepo{
		db: db,
	}
}

func (v *videoRepo) GetVideoByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	video := &models.Video{}
	if err := v.db.QueryRowxContext(
		ctx,
		getVideoByIDQuery,
		videoID,
	).StructScan(video); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	return video, nil
}

func (v *videoRepo) GetVideoFileByID(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error) {
	file := &models.VideoFile{}
	if err := v.db.QueryRowxContext(
		ctx,
		getVideoFileByIDQuery,
		fileID,
	).StructScan(file); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, videos.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video file by id: %w", err)
	}
	return file, nil
}

func (v *videoRepo) UpdateStatus(ctx context.Context, videoID, fileID uuid.UUID, status models.VideoStatus) error {
	if _, err := v.db.ExecContext(ctx, updateVideoStatusQuery, videoID, status); err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}
	if _, err := v.db.ExecContext(ctx, updateVideoFileStatusQuery, fileID, status); err != nil {
		return fmt.Errorf("failed to update video file status: %w", err)
	}
	return nil
}

func (v *videoRepo) SetTranscodeResult(ctx context.Context, videoID, fileID uuid.UUID, outputDir, resolution string, duration int64) error {
	if _, err := v.db.ExecContext(
		ctx,
		setVideoTranscodedQuery,
		videoID,
		models.StatusPendingUpload,
		duration,
	); err != nil {
		return fmt.Errorf("failed to set video transcode result: %w", err)
	}
	if _, err := v.db.ExecContext(
		ctx,
		setFileTranscodedQuery,
		fileID,
		models.StatusPendingUpload,
		outputDir,
		resolution,
		duration,
	); err != nil {
		return fmt.Errorf("failed to set video file transcode result: %w", err)
	}
	return nil
}

func (v *videoRepo) MarkPublished(ctx context.Context, videoID, fileID uuid.UUID, fileURL, thumbnailURL string) error {
	if _, err := v.db.ExecContext(
		ctx,
		markVideoPublishedQuery,
		videoID,
		models.StatusPublished,
		thumbnailURL,
	); err != nil {
		return fmt.Errorf("failed to mark video published: %w", err)
	}
	if _, err := v.db.ExecContext(
		ctx,
		markFilePublishedQuery,
		fileID,
		models.StatusPublished,
		fileURL,
	); err != nil {
		return fmt.Errorf("failed to mark video file published: %w", err)
	}
	return nil
}

func (v *videoRepo) ResetFileStatus(ctx context.Context, fileID uuid.UUID, status models.VideoStatus) error {
	res, err := v.db.ExecContext(ctx, updateVideoFileStatusQuery, fileID, status)
	if err != nil {
		return fmt.Errorf("failed to reset video file status: %w", err)
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return videos.ErrNotFound
	}
	return nil
}

func (v *videoRepo) GetViewCount(ctx context.Context, videoID uuid.UUID) (int64, error) {
	var count int64
	if err := v.db.GetContext(ctx, &count, getViewCountQuery, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, videos.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get view count: %w", err)
	}
	return count, nil
}

func (v *videoRepo) IncrementViewCounts(ctx context.Context, deltas map[uuid.UUID]int64) (int64, error) {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin view count tx: %w", err)
	}
	defer tx.Rollback()

	var affected int64
	for videoID, delta := range deltas {
		res, err := tx.ExecContext(ctx, incrementViewCountQuery, videoID, delta)
		if err != nil {
			return 0, fmt.Errorf("failed to increment view count: %w", err)
		}
		count, _ := res.RowsAffected()
		affected += count
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit view count tx: %w", err)
	}
	return affected, nil
}
