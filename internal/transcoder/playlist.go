package transcoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type variant struct {
	height  int
	bitrate int
}

// writeMasterPlaylist emits the adaptive-streaming manifest referencing
// every produced variant in ascending configured order.
func writeMasterPlaylist(outputDir string, variants []variant, info *VideoInfo) error {
	lines := []string{
		"#EXTM3U",
		"#EXT-X-VERSION:3",
	}
	for _, v := range variants {
		bandwidth := v.bitrate * 1000
		width := CalculateWidth(v.height, info)
		lines = append(lines, fmt.Sprintf("#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d", bandwidth, width, v.height))
		lines = append(lines, fmt.Sprintf("%dp/index.m3u8", v.height))
	}

	path := filepath.Join(outputDir, "master.m3u8")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write master playlist: %w", err)
	}
	return nil
}
