// Package version holds the build version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Version is the rxhkd version, overridden at link time with
// -ldflags "-X github.com/aspizu/rxhkd/internal/version.Version=..."
var Version = "0.1.0"

const (
	releasesURL  = "https://api.github.com/repos/aspizu/rxhkd/releases/latest"
	checkTimeout = 5 * time.Second
)

// Release is the subset of a GitHub release used by the update check
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update is the result of an update check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Checker queries a releases endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a checker for the rxhkd GitHub releases
func NewChecker() *Checker {
	return &Checker{
		URL:    releasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check reports whether the latest release is newer than current
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "rxhkd/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Update{}, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return Update{
		Available: latest != "" && isNewerVersion(latest, strings.TrimPrefix(current, "v")),
		Latest:    latest,
		URL:       release.HTMLURL,
	}, nil
}

// isNewerVersion reports whether latest > current, comparing numeric
// dot-separated parts. Pre-release and build suffixes are ignored.
func isNewerVersion(latest, current string) bool {
	a := parseVersion(latest)
	b := parseVersion(current)

	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

// parseVersion splits a version into integer parts, skipping parts that
// are not numbers
func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	var result []int
	for _, part := range strings.Split(version, ".") {
		if num, err := strconv.Atoi(part); err == nil {
			result = append(result, num)
		}
	}
	return result
}
