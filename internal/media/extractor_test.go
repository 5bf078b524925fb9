package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ebreen/luffe/internal/media"
	"github.com/ebreen/luffe/internal/services"
)

func writeStubFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub ffmpeg: %v", err)
	}
	return path
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reel-1.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func TestExtractAudioWritesSiblingMP3(t *testing.T) {
	// The stub mimics ffmpeg: the output path is the final argument.
	stub := writeStubFFmpeg(t, `out=""
for arg in "$@"; do out=$arg; done
printf audio > "$out"`)
	video := writeVideo(t)

	audio, err := media.ExtractAudio(context.Background(), stub, video)
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	want := filepath.Join(filepath.Dir(video), "reel-1.mp3")
	if audio != want {
		t.Fatalf("audio path %q, want %q", audio, want)
	}
	data, err := os.ReadFile(audio)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "audio" {
		t.Fatalf("unexpected audio contents %q", data)
	}
}

func TestExtractAudioCommandFailure(t *testing.T) {
	stub := writeStubFFmpeg(t, `echo "corrupt input" >&2
exit 1`)
	video := writeVideo(t)

	_, err := media.ExtractAudio(context.Background(), stub, video)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
}

func TestExtractAudioEmptyOutput(t *testing.T) {
	stub := writeStubFFmpeg(t, `out=""
for arg in "$@"; do out=$arg; done
: > "$out"`)
	video := writeVideo(t)

	_, err := media.ExtractAudio(context.Background(), stub, video)
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error for empty output, got %v", err)
	}
}

func TestExtractAudioMissingVideo(t *testing.T) {
	stub := writeStubFFmpeg(t, `exit 0`)

	_, err := media.ExtractAudio(context.Background(), stub, filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error for missing video, got %v", err)
	}
}
