package models

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// TranscodeRequest is the work queue payload produced once per upload.
type TranscodeRequest struct {
	VideoID        uuid.UUID `json:"video_id" validate:"required"`
	VideoFileID    uuid.UUID `json:"video_file_id" validate:"required"`
	SourceFilePath string    `json:"source_file_path" validate:"required"`
	UserID         uuid.UUID `json:"user_id" validate:"required"`
	FileName       string    `json:"file_name" validate:"required,lte=255"`
}

type StageEventType string

const (
	EventTranscodeComplete StageEventType = "TRANSCODE_COMPLETE"
	EventUploadComplete    StageEventType = "UPLOAD_COMPLETE"
)

// StageEvent is one record of the processing event log. Exactly one variant
// field is set for a known Type; all variants are nil for types this build
// does not know, which consumers acknowledge and skip.
type StageEvent struct {
	ID   string
	Type StageEventType

	TranscodeComplete *TranscodeCompleteEvent
}

type TranscodeCompleteEvent struct {
	VideoID         uuid.UUID
	VideoFileID     uuid.UUID
	OutputDir       string
	Resolution      string
	Duration        int64
	UserID          uuid.UUID
	TargetDirectory string
	Timestamp       int64
}

// Values flattens the event into the string map a stream record carries.
func (e *TranscodeCompleteEvent) Values() map[string]interface{} {
	return map[string]interface{}{
		"eventType":       string(EventTranscodeComplete),
		"videoId":         e.VideoID.String(),
		"videoFileId":     e.VideoFileID.String(),
		"outputDir":       e.OutputDir,
		"resolution":      e.Resolution,
		"duration":        strconv.FormatInt(e.Duration, 10),
		"userId":          e.UserID.String(),
		"targetDirectory": e.TargetDirectory,
		"timestamp":       strconv.FormatInt(e.Timestamp, 10),
	}
}

// ParseStageEvent rebuilds a StageEvent from raw stream record values.
// An unknown eventType is not an error; the returned event simply has no
// variant set.
func ParseStageEvent(id string, values map[string]interface{}) (*StageEvent, error) {
	eventType := StageEventType(stringValue(values, "eventType"))
	event := &StageEvent{
		ID:   id,
		Type: eventType,
	}
	if eventType != EventTranscodeComplete {
		return event, nil
	}

	videoID, err := uuid.Parse(stringValue(values, "videoId"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse videoId: %w", err)
	}
	videoFileID, err := uuid.Parse(stringValue(values, "videoFileId"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse videoFileId: %w", err)
	}
	userID, err := uuid.Parse(stringValue(values, "userId"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse userId: %w", err)
	}
	duration, err := strconv.ParseInt(stringValue(values, "duration"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration: %w", err)
	}
	timestamp, _ := strconv.ParseInt(stringValue(values, "timestamp"), 10, 64)

	event.TranscodeComplete = &TranscodeCompleteEvent{
		VideoID:         videoID,
		VideoFileID:     videoFileID,
		OutputDir:       stringValue(values, "outputDir"),
		Resolution:      stringValue(values, "resolution"),
		Duration:        duration,
		UserID:          userID,
		TargetDirectory: stringValue(values, "targetDirectory"),
		Timestamp:       timestamp,
	}
	return event, nil
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ViewIncrementEvent is published once per view; MessageID is the dedup key.
type ViewIncrementEvent struct {
	MessageID string    `json:"message_id"`
	VideoID   uuid.UUID `json:"video_id"`
	Increment int64     `json:"increment"`
}
