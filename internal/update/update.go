// Package update checks GitHub releases for a newer odootable build.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	repo          = "salmonumbrella/odootable"
	checkInterval = 24 * time.Hour
	fetchTimeout  = 3 * time.Second
)

// HTTPDoer is the part of http.Client the checker needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker polls the GitHub releases API at most once per interval and
// remembers the answer in a small cache file under the user cache dir.
type Checker struct {
	client    HTTPDoer
	cachePath string
	interval  time.Duration
	now       func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Checker) { c.client = client }
}

// WithCachePath replaces the cache file location.
func WithCachePath(path string) Option {
	return func(c *Checker) { c.cachePath = path }
}

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// WithCheckInterval replaces the minimum time between API calls.
func WithCheckInterval(interval time.Duration) Option {
	return func(c *Checker) { c.interval = interval }
}

// NewChecker returns a Checker with production defaults.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:   http.DefaultClient,
		interval: checkInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs a best-effort check with production defaults. It is called
// from main after the filter has finished, so failures are logged at
// debug level and never surface to the user.
func Check(ctx context.Context, current string) string {
	msg, err := NewChecker().Check(ctx, current)
	if err != nil {
		slog.Debug("update check failed", "error", err)
	}
	return msg
}

type checkState struct {
	LastCheck time.Time `json:"last_check"`
	Latest    string    `json:"latest_version"`
}

// Check returns a short upgrade notice when a release newer than current
// exists, or "" otherwise.
func (c *Checker) Check(ctx context.Context, current string) (string, error) {
	path, err := c.statePath()
	if err != nil {
		return "", err
	}
	state := loadState(path)

	if state.Latest != "" && c.now().Sub(state.LastCheck) <= c.interval {
		return notice(current, state.Latest), nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	latest, err := c.latestRelease(ctx)
	if err != nil {
		return "", err
	}
	saveState(path, checkState{LastCheck: c.now(), Latest: latest})
	return notice(current, latest), nil
}

func (c *Checker) statePath() (string, error) {
	if c.cachePath != "" {
		return c.cachePath, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(dir, "odootable", "update-check.json"), nil
}

func (c *Checker) latestRelease(ctx context.Context) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching latest release: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("decoding release: %w", err)
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}

// loadState tolerates a missing or corrupt cache file; both just mean
// the next check hits the API again.
func loadState(path string) checkState {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkState{}
	}
	var state checkState
	if err := json.Unmarshal(data, &state); err != nil {
		return checkState{}
	}
	return state
}

func saveState(path string, state checkState) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Debug("update cache not saved", "error", err)
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Debug("update cache not saved", "error", err)
	}
}

func notice(current, latest string) string {
	if !isNewer(current, latest) {
		return ""
	}
	return fmt.Sprintf("A new version is available: %s (current: %s)\nRun: go install github.com/%s/cmd/odootable@latest", latest, current, repo)
}

// isNewer compares dotted release versions numerically and treats dev
// builds as up to date.
func isNewer(current, latest string) bool {
	if current == "dev" || current == "unknown" || current == "" {
		return false
	}
	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for i := 0; i < len(cur) && i < len(lat); i++ {
		c, _ := strconv.Atoi(cur[i])
		l, _ := strconv.Atoi(lat[i])
		if l != c {
			return l > c
		}
	}
	return len(lat) > len(cur)
}
