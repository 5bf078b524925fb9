// Package media extracts audio tracks from downloaded reel videos using
// the system ffmpeg binary.
package media
