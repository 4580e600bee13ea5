package videos

import (
	"context"

	"github.com/vrsio/video-backend/internal/models"

	"github.com/google/uuid"
)

type UseCase interface {
	// EnqueueTranscode validates and publishes a transcode request for a
	// file sitting in PENDING_TRANSCODE.
	EnqueueTranscode(ctx context.Context, req *models.TranscodeRequest) error

	// RequeueFailedFile is the operator retry path. A TRANSCODE_FAILED file
	// goes back to PENDING_TRANSCODE and its request is re-published; an
	// UPLOAD_FAILED file goes back to PENDING_UPLOAD and its stage event is
	// re-appended, since its file_path already points at the transcode
	// output. Files in any other status are refused.
	RequeueFailedFile(ctx context.Context, fileID uuid.UUID) error

	GetVideo(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	GetVideoFile(ctx context.Context, fileID uuid.UUID) (*models.VideoFile, error)
}
