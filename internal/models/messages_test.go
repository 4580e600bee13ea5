package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseStageEvent_RoundTrip(t *testing.T) {
	src := &TranscodeCompleteEvent{
		VideoID:         uuid.New(),
		VideoFileID:     uuid.New(),
		OutputDir:       "/tmp/transcoded/abc",
		Resolution:      "480p,720p",
		Duration:        42,
		UserID:          uuid.New(),
		TargetDirectory: "videos/abc",
		Timestamp:       1700000000000,
	}

	event, err := ParseStageEvent("5-1", src.Values())
	require.NoError(t, err)
	require.Equal(t, "5-1", event.ID)
	require.Equal(t, EventTranscodeComplete, event.Type)
	require.Equal(t, src, event.TranscodeComplete)
}

func TestParseStageEvent_UnknownTypeHasNoVariant(t *testing.T) {
	event, err := ParseStageEvent("6-0", map[string]interface{}{
		"eventType": "UPLOAD_COMPLETE",
		"videoId":   uuid.NewString(),
	})
	require.NoError(t, err)
	require.Equal(t, StageEventType("UPLOAD_COMPLETE"), event.Type)
	require.Nil(t, event.TranscodeComplete)
}

func TestParseStageEvent_BadUUIDRejected(t *testing.T) {
	values := map[string]interface{}{
		"eventType": string(EventTranscodeComplete),
		"videoId":   "not-a-uuid",
	}
	_, err := ParseStageEvent("7-0", values)
	require.Error(t, err)
}

func TestVideoStatus(t *testing.T) {
	require.Equal(t, "pending_transcode", StatusPendingTranscode.String())
	require.Equal(t, "published", StatusPublished.String())
	require.Equal(t, "unknown", VideoStatus(99).String())

	require.True(t, StatusPublished.Terminal())
	require.True(t, StatusTranscodeFailed.Terminal())
	require.True(t, StatusUploadFailed.Terminal())
	require.False(t, StatusPendingUpload.Terminal())
	require.False(t, StatusTranscoding.Terminal())
}
