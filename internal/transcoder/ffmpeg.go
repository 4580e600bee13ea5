package transcoder

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/pkg/logger"

	"github.com/google/uuid"
)

type ffmpegTranscoder struct {
	cfg    *config.Config
	logger logger.Logger
}

func NewFFmpegTranscoder(cfg *config.Config, logger logger.Logger) Transcoder {
	return &ffmpegTranscoder{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *ffmpegTranscoder) ConvertToHLS(ctx context.Context, inputPath string, fileID uuid.UUID) (*Result, error) {
	outputDir := filepath.Join(f.cfg.FFmpeg.OutputPath, fileID.String())
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	info, err := f.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	var resolutions []string
	var variants []variant
	for i, targetHeight := range f.cfg.FFmpeg.Resolutions {
		// No upscaling past the source's native resolution.
		if targetHeight > info.Height {
			continue
		}

		variantDir := filepath.Join(outputDir, fmt.Sprintf("%dp", targetHeight))
		if err := os.MkdirAll(variantDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create variant directory: %w", err)
		}

		bitrate := f.cfg.FFmpeg.Bitrates[i]
		if err := f.encodeVariant(ctx, inputPath, variantDir, targetHeight, bitrate, info); err != nil {
			return nil, err
		}

		resolutions = append(resolutions, fmt.Sprintf("%dp", targetHeight))
		variants = append(variants, variant{height: targetHeight, bitrate: bitrate})
	}

	if err := writeMasterPlaylist(outputDir, variants, info); err != nil {
		return nil, err
	}

	return &Result{
		OutputDir:   outputDir,
		Resolutions: resolutions,
		Duration:    int64(math.Round(info.Duration)),
	}, nil
}

func (f *ffmpegTranscoder) encodeVariant(ctx context.Context, inputPath, variantDir string, targetHeight, bitrate int, info *VideoInfo) error {
	width := CalculateWidth(targetHeight, info)
	cmd := exec.CommandContext(ctx, f.cfg.FFmpeg.FFmpegPath,
		"-i", inputPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-s", fmt.Sprintf("%dx%d", width, targetHeight),
		"-b:v", fmt.Sprintf("%dk", bitrate),
		"-f", "hls",
		"-hls_time", strconv.Itoa(f.cfg.FFmpeg.HlsTime),
		"-hls_list_size", strconv.Itoa(f.cfg.FFmpeg.HlsListSize),
		"-hls_segment_filename", filepath.Join(variantDir, "segment_%03d.ts"),
		"-strict", "experimental",
		"-y", filepath.Join(variantDir, "index.m3u8"),
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to encode %dp variant: %w", targetHeight, err)
	}
	return nil
}

func (f *ffmpegTranscoder) Probe(ctx context.Context, inputPath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, f.cfg.FFmpeg.FFprobePath, "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=p=0", inputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %v output: %v", err, string(output))
	}

	trimmedOutput := strings.TrimSpace(string(output))
	trimmedOutput = strings.TrimRight(trimmedOutput, ",")
	parts := strings.Split(trimmedOutput, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("unexpected ffprobe output: %s", trimmedOutput)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %v", err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid height: %v", err)
	}

	cmd = exec.CommandContext(ctx, f.cfg.FFmpeg.FFprobePath, "-v", "error", "-show_entries",
		"format=duration", "-of", "csv=p=0", inputPath)
	durationOutput, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe duration error: %v", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(durationOutput)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %v", err)
	}

	return &VideoInfo{
		Width:    width,
		Height:   height,
		Duration: duration,
	}, nil
}

// CalculateWidth derives the variant width from the target height keeping
// the source aspect ratio, falling back to 16:9 when no probe is available.
// Encoders want even dimensions, so an odd result is rounded down.
func CalculateWidth(targetHeight int, info *VideoInfo) int {
	var width int
	if info != nil && info.Height > 0 {
		aspectRatio := float64(info.Width) / float64(info.Height)
		width = int(math.Round(float64(targetHeight) * aspectRatio))
	} else {
		width = targetHeight * 16 / 9
	}
	if width%2 != 0 {
		width--
	}
	return width
}
