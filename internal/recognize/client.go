package recognize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/services"
)

// Song holds the metadata AudD returns for an identified track.
type Song struct {
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	SpotifyLink string
}

// Result is the outcome of a recognition attempt. Matched reports whether
// the service identified the audio; when false, Song is nil and the audio
// is conclusively unknown to the catalog.
type Result struct {
	Matched bool
	Song    *Song
}

// Client talks to the AudD recognition API.
type Client struct {
	baseURL      string
	token        string
	returnFields string
	httpClient   *http.Client
}

// Option customises the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New constructs a Client from the AudD configuration section.
func New(cfg config.AudD, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.APIToken)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "recognize", "new", "AudD API token is required", errors.New("missing api token"))
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.audd.io"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:      baseURL,
		token:        token,
		returnFields: strings.TrimSpace(cfg.Return),
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type auddResponse struct {
	Status string     `json:"status"`
	Result *auddTrack `json:"result"`
	Error  *auddError `json:"error"`
}

type auddError struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type auddTrack struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	Spotify     *struct {
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	} `json:"spotify"`
}

// Recognize uploads the audio file at audioPath and returns the tagged
// recognition outcome.
func (c *Client) Recognize(ctx context.Context, audioPath string) (Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrResource, "recognize", "recognize", "audio file not readable", err)
	}
	defer file.Close()

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("api_token", c.token); err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "encode request", err)
	}
	if c.returnFields != "" {
		if err := writer.WriteField("return", c.returnFields); err != nil {
			return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "encode request", err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "encode request", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Result{}, services.Wrap(services.ErrResource, "recognize", "recognize", "read audio file", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", strings.NewReader(body.String()))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "AudD request failed", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrTransientService
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			marker = services.ErrAuth
		}
		return Result{}, services.Wrap(marker, "recognize", "recognize",
			fmt.Sprintf("AudD returned status %d", resp.StatusCode), errors.New(http.StatusText(resp.StatusCode)))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "read AudD response", err)
	}

	var decoded auddResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize", "decode AudD response", err)
	}

	switch decoded.Status {
	case "success":
	case "error":
		marker := services.ErrTransientService
		message := "AudD reported an error"
		if decoded.Error != nil {
			message = fmt.Sprintf("AudD error %d: %s", decoded.Error.ErrorCode, decoded.Error.ErrorMessage)
			if isAuthErrorCode(decoded.Error.ErrorCode) {
				marker = services.ErrAuth
			}
		}
		return Result{}, services.Wrap(marker, "recognize", "recognize", message, errors.New("api error"))
	default:
		return Result{}, services.Wrap(services.ErrTransientService, "recognize", "recognize",
			fmt.Sprintf("unexpected AudD status %q", decoded.Status), errors.New("unknown status"))
	}

	if decoded.Result == nil {
		return Result{Matched: false}, nil
	}

	song := &Song{
		Title:       strings.TrimSpace(decoded.Result.Title),
		Artist:      strings.TrimSpace(decoded.Result.Artist),
		Album:       strings.TrimSpace(decoded.Result.Album),
		ReleaseDate: strings.TrimSpace(decoded.Result.ReleaseDate),
	}
	if decoded.Result.Spotify != nil {
		song.SpotifyLink = strings.TrimSpace(decoded.Result.Spotify.ExternalURLs.Spotify)
	}
	if song.Title == "" {
		return Result{Matched: false}, nil
	}
	return Result{Matched: true, Song: song}, nil
}

// AudD's 900-series codes cover authentication and quota problems that a
// retry cannot fix.
func isAuthErrorCode(code int) bool {
	return code == 900 || code == 901
}
