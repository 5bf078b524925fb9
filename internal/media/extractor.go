package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ebreen/luffe/internal/services"
)

// ExtractAudio runs ffmpeg against the video at videoPath and writes the
// audio track as an MP3 next to it. It returns the path to the extracted
// file.
func ExtractAudio(ctx context.Context, binary, videoPath string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return "", services.Wrap(services.ErrValidation, "media", "extract", "empty video path", errors.New("video path required"))
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", services.Wrap(services.ErrResource, "media", "extract", "video file not readable", err)
	}

	audioPath := audioPathFor(videoPath)
	cmd := exec.CommandContext(ctx, binary,
		"-y",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		audioPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(audioPath)
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrResource, "media", "extract", "audio extraction cancelled", ctx.Err())
		}
		detail := strings.TrimSpace(string(output))
		return "", services.Wrap(services.ErrResource, "media", "extract",
			fmt.Sprintf("ffmpeg failed: %s", tail(detail, 512)), err)
	}
	if info, err := os.Stat(audioPath); err != nil || info.Size() == 0 {
		_ = os.Remove(audioPath)
		return "", services.Wrap(services.ErrResource, "media", "extract", "ffmpeg produced no audio output", errors.New("empty extraction result"))
	}
	return audioPath, nil
}

func audioPathFor(videoPath string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(filepath.Dir(videoPath), base+".mp3")
}

func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
