package transcoder

import (
	"context"

	"github.com/google/uuid"
)

// Result is what a finished transcode hands to the rest of the pipeline.
type Result struct {
	OutputDir   string
	Resolutions []string
	Duration    int64
}

// Transcoder turns one source file into a set of HLS variants plus a
// master playlist. Implementations block for the whole encode.
type Transcoder interface {
	ConvertToHLS(ctx context.Context, inputPath string, fileID uuid.UUID) (*Result, error)
}

// VideoInfo is the probed geometry of a source file.
type VideoInfo struct {
	Width    int
	Height   int
	Duration float64
}
