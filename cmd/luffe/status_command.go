package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type statusPayload struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	QueueDepth    int   `json:"queue_depth"`
	Pipeline      struct {
		Processed int64 `json:"processed"`
		CacheHits int64 `json:"cache_hits"`
		NoMatches int64 `json:"no_matches"`
		Failures  int64 `json:"failures"`
	} `json:"pipeline"`
	Store struct {
		Users           int64 `json:"users"`
		Songs           int64 `json:"songs"`
		Identifications int64 `json:"identifications"`
		CachedReels     int64 `json:"cached_reels"`
	} `json:"store"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and pipeline counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + cfg.Paths.APIBind + "/api/status")
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not reachable", colorize))
				return nil
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status endpoint returned %d", resp.StatusCode)
			}

			var payload statusPayload
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			uptime := (time.Duration(payload.UptimeSeconds) * time.Second).String()
			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running, up "+uptime, colorize))
			fmt.Fprintln(out, renderStatusLine("Queue depth", statusInfo, fmt.Sprintf("%d", payload.QueueDepth), colorize))
			fmt.Fprintln(out, renderStatusLine("Processed", statusInfo, fmt.Sprintf("%d", payload.Pipeline.Processed), colorize))
			fmt.Fprintln(out, renderStatusLine("Cache hits", statusInfo, fmt.Sprintf("%d", payload.Pipeline.CacheHits), colorize))
			fmt.Fprintln(out, renderStatusLine("No matches", statusInfo, fmt.Sprintf("%d", payload.Pipeline.NoMatches), colorize))
			failureKind := statusOK
			if payload.Pipeline.Failures > 0 {
				failureKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Failures", failureKind, fmt.Sprintf("%d", payload.Pipeline.Failures), colorize))
			fmt.Fprintln(out, renderStatusLine("Users", statusInfo, fmt.Sprintf("%d", payload.Store.Users), colorize))
			fmt.Fprintln(out, renderStatusLine("Songs", statusInfo, fmt.Sprintf("%d", payload.Store.Songs), colorize))
			fmt.Fprintln(out, renderStatusLine("Cached reels", statusInfo, fmt.Sprintf("%d", payload.Store.CachedReels), colorize))
			return nil
		},
	}
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 14

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	text := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", message)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + text + ansiReset
		}
	}
	return text
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
