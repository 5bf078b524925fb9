package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
)

// DownloadReel streams the reel video into dir and returns the local path. The
// video URL is pre-signed, so the request carries no session headers. Failures
// are resource errors: the event is abandoned, not retried.
func (c *Client) DownloadReel(ctx context.Context, reel source.Reel, dir string) (string, error) {
	if reel.VideoURL == "" {
		return "", services.Wrap(services.ErrValidation, "instagram", "download reel", "empty video url", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reel.VideoURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", "build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	target := filepath.Join(dir, reel.MediaID+".mp4")
	out, err := os.Create(target)
	if err != nil {
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", "create file", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", "stream body", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", services.Wrap(services.ErrResource, "instagram", "download reel", "close file", err)
	}
	return target, nil
}
