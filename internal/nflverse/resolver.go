// Package nflverse resolves and downloads nflverse-data release assets.
package nflverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DefaultAPIBase = "https://api.github.com/repos/nflverse/nflverse-data"

type releaseResp struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// Format is the preferred extension that matched the asset name, or "bin".
func (a Asset) Format(prefer []string) string {
	n := strings.ToLower(a.Name)
	for _, p := range prefer {
		if strings.HasSuffix(n, "."+p) || strings.Contains(n, "."+p+".") {
			return p
		}
	}
	return "bin"
}

var datasetToTag = map[string]string{
	"pbp":            "pbp",
	"players":        "players",
	"rosters_weekly": "weekly_rosters",
	"snap_counts":    "snap_counts",
}

// Client talks to the GitHub releases API for nflverse-data.
type Client struct {
	HTTP    *http.Client
	APIBase string
	Token   string // optional GitHub token for higher rate limits
}

func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
		APIBase: DefaultAPIBase,
		Token:   strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
	}
}

func (c *Client) http() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Resolve finds the release asset for dataset and season, preferring the
// formats in order.
func (c *Client) Resolve(ctx context.Context, dataset string, season int, prefer []string) (Asset, error) {
	tag, ok := datasetToTag[dataset]
	if !ok {
		return Asset{}, fmt.Errorf("unknown dataset %q", dataset)
	}
	base := c.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	api := fmt.Sprintf("%s/releases/tags/%s", strings.TrimRight(base, "/"), tag)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return Asset{}, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http().Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("github api status %d for %s", resp.StatusCode, api)
	}
	var r releaseResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Asset{}, fmt.Errorf("decode release json: %w", err)
	}
	a, ok := pick(r.Assets, dataset, tag, season, prefer)
	if !ok {
		return Asset{}, fmt.Errorf("no %s asset for season %d in tag %s", dataset, season, tag)
	}
	return a, nil
}

// pick scores assets: the season in the name dominates, then format
// preference, then dataset and tag names. Ties fall back to name order.
func pick(assets []Asset, dataset, tag string, season int, prefer []string) (Asset, bool) {
	year := strconv.Itoa(season)
	score := func(name string) int {
		n := strings.ToLower(name)
		s := 0
		if strings.Contains(n, year) {
			s += 10
		}
		for i, ext := range prefer {
			if strings.HasSuffix(n, "."+ext) || strings.Contains(n, "."+ext+".") {
				s += 5 - i
				break
			}
		}
		if strings.Contains(n, strings.ToLower(dataset)) {
			s += 2
		}
		if strings.Contains(n, strings.ToLower(tag)) {
			s++
		}
		return s
	}

	type cand struct {
		Asset
		Score int
	}
	// season-partitioned releases must name the season
	bySeason := hasAnySeason(assets)
	var cands []cand
	for _, a := range assets {
		if bySeason && !strings.Contains(a.Name, year) {
			continue
		}
		cands = append(cands, cand{a, score(a.Name)})
	}
	if len(cands) == 0 {
		return Asset{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			return cands[i].Name < cands[j].Name
		}
		return cands[i].Score > cands[j].Score
	})
	return cands[0].Asset, true
}

func hasAnySeason(assets []Asset) bool {
	for _, a := range assets {
		for y := 1999; y <= time.Now().Year()+1; y++ {
			if strings.Contains(a.Name, strconv.Itoa(y)) {
				return true
			}
		}
	}
	return false
}

// Download streams url into w and returns the bytes written.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "nfl-pbp-reports/1.0")
	resp, err := c.http().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("fetch %s: status %d body=%q", url, resp.StatusCode, string(b))
	}
	return io.Copy(w, resp.Body)
}

// DownloadFile writes url to path through a temp file in the same directory.
func (c *Client) DownloadFile(ctx context.Context, url, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	n, err := c.Download(ctx, url, tmp)
	if err != nil {
		_ = tmp.Close()
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), path)
}

// FetchSeason downloads the play-by-play CSV for season into dir and
// returns the local path. Gzip assets keep their .gz suffix.
func (c *Client) FetchSeason(ctx context.Context, dir string, season int) (string, error) {
	a, err := c.Resolve(ctx, "pbp", season, []string{"csv", "csv.gz"})
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("play_by_play_%d.csv", season)
	if strings.HasSuffix(strings.ToLower(a.Name), ".gz") {
		name += ".gz"
	}
	path := filepath.Join(dir, name)
	if _, err := c.DownloadFile(ctx, a.URL, path); err != nil {
		return "", fmt.Errorf("download %s: %w", a.Name, err)
	}
	return path, nil
}
