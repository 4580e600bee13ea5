package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoStatus codes are stored as integers so rows written by older
// deployments keep their meaning.
type VideoStatus int

const (
	StatusPublished        VideoStatus = 0
	StatusReviewing        VideoStatus = 1
	StatusOffline          VideoStatus = 2
	StatusTranscoding      VideoStatus = 3
	StatusTranscodeFailed  VideoStatus = 4
	StatusUploaded         VideoStatus = 5
	StatusPendingTranscode VideoStatus = 6
	StatusTranscoded       VideoStatus = 7
	StatusPendingUpload    VideoStatus = 8
	StatusUploading        VideoStatus = 9
	StatusUploadFailed     VideoStatus = 10
)

var videoStatusNames = map[VideoStatus]string{
	StatusPublished:        "published",
	StatusReviewing:        "reviewing",
	StatusOffline:          "offline",
	StatusTranscoding:      "transcoding",
	StatusTranscodeFailed:  "transcode_failed",
	StatusUploaded:         "uploaded",
	StatusPendingTranscode: "pending_transcode",
	StatusTranscoded:       "transcoded",
	StatusPendingUpload:    "pending_upload",
	StatusUploading:        "uploading",
	StatusUploadFailed:     "upload_failed",
}

func (s VideoStatus) String() string {
	if name, ok := videoStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the pipeline will never move the file again
// without external remediation.
func (s VideoStatus) Terminal() bool {
	return s == StatusPublished || s == StatusTranscodeFailed || s == StatusUploadFailed
}

type Video struct {
	VideoID      uuid.UUID   `json:"video_id" db:"video_id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	Title        string      `json:"title" db:"title"`
	Description  string      `json:"description" db:"description"`
	ThumbnailURL string      `json:"thumbnail_url" db:"thumbnail_url"`
	ViewCount    int64       `json:"view_count" db:"view_count"`
	LikeCount    int64       `json:"like_count" db:"like_count"`
	DislikeCount int64       `json:"dislike_count" db:"dislike_count"`
	CommentCount int64       `json:"comment_count" db:"comment_count"`
	Duration     int64       `json:"duration" db:"duration"`
	Status       VideoStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// VideoFile is one rendition group of a source upload. FilePath holds the
// local transcode output directory until publication, then the remote URL.
type VideoFile struct {
	FileID     uuid.UUID   `json:"file_id" db:"file_id"`
	VideoID    uuid.UUID   `json:"video_id" db:"video_id"`
	UserID     uuid.UUID   `json:"user_id" db:"user_id"`
	FileName   string      `json:"file_name" db:"file_name"`
	FilePath   string      `json:"file_path" db:"file_path"`
	FileSize   int64       `json:"file_size" db:"file_size"`
	FileType   string      `json:"file_type" db:"file_type"`
	Resolution string      `json:"resolution" db:"resolution"`
	Duration   int64       `json:"duration" db:"duration"`
	Status     VideoStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}
