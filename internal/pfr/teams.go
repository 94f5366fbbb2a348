package pfr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const BaseURL = "https://www.pro-football-reference.com"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36 (+stats-research)"

// teamCodes maps PFR URL paths to PFR and nflverse abbreviations.
var teamCodes = []struct {
	Path string
	PFR  string
	NFL  string
}{
	{"crd", "ARI", "ARI"}, {"atl", "ATL", "ATL"}, {"rav", "BAL", "BAL"}, {"buf", "BUF", "BUF"},
	{"car", "CAR", "CAR"}, {"chi", "CHI", "CHI"}, {"cin", "CIN", "CIN"}, {"cle", "CLE", "CLE"},
	{"dal", "DAL", "DAL"}, {"den", "DEN", "DEN"}, {"det", "DET", "DET"}, {"gnb", "GNB", "GB"},
	{"htx", "HOU", "HOU"}, {"clt", "IND", "IND"}, {"jax", "JAX", "JAX"}, {"kan", "KAN", "KC"},
	{"rai", "LVR", "LV"}, {"sdg", "LAC", "LAC"}, {"ram", "LAR", "LA"}, {"mia", "MIA", "MIA"},
	{"min", "MIN", "MIN"}, {"nwe", "NWE", "NE"}, {"nor", "NOR", "NO"}, {"nyg", "NYG", "NYG"},
	{"nyj", "NYJ", "NYJ"}, {"phi", "PHI", "PHI"}, {"pit", "PIT", "PIT"}, {"sfo", "SFO", "SF"},
	{"sea", "SEA", "SEA"}, {"tam", "TAM", "TB"}, {"oti", "TEN", "TEN"}, {"was", "WAS", "WAS"},
}

// relocated franchises as they appear in older play-by-play seasons
var legacyAbbr = map[string]string{
	"OAK": "LV", "SD": "LAC", "STL": "LA", "LAR": "LA", "JAC": "JAX",
}

// Normalize maps a PFR, legacy or nflverse abbreviation to the nflverse form.
// Unknown values come back upper-cased.
func Normalize(abbr string) string {
	a := strings.ToUpper(strings.TrimSpace(abbr))
	if v, ok := legacyAbbr[a]; ok {
		return v
	}
	for _, t := range teamCodes {
		if t.PFR == a || t.NFL == a {
			return t.NFL
		}
	}
	return a
}

// TeamFromPath resolves a PFR team URL path such as "rav" or
// "/teams/rav/2023.htm" to its nflverse abbreviation.
func TeamFromPath(path string) (string, bool) {
	p := strings.Trim(path, "/")
	if strings.HasPrefix(p, "teams/") {
		p = strings.TrimPrefix(p, "teams/")
		if i := strings.IndexByte(p, '/'); i >= 0 {
			p = p[:i]
		}
	}
	for _, t := range teamCodes {
		if t.Path == p {
			return t.NFL, true
		}
	}
	return "", false
}

// Client fetches PFR pages, retrying on 429 and 5xx.
type Client struct {
	HTTP        *http.Client
	BaseURL     string
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
	Cooldown    time.Duration // 429 wait when no Retry-After is sent
}

func NewClient() *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		BaseURL:     BaseURL,
		MaxAttempts: 6,
		RetryBase:   400 * time.Millisecond,
		RetryMax:    6 * time.Second,
		Cooldown:    7 * time.Second,
	}
}

func parseRetryAfter(h string) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func backoff(attempt int, base, max time.Duration) time.Duration {
	d := base * time.Duration(1<<attempt)
	if base > 0 {
		d += time.Duration(rand.Int63n(int64(base)))
	}
	if d > max {
		return max
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get returns the body of url, honouring Retry-After on 429.
func (c *Client) Get(ctx context.Context, url, referer string) (string, error) {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		body, status, retryAfter, err := c.once(ctx, url, referer)
		switch {
		case err != nil:
			last = err
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusTooManyRequests:
			last = fmt.Errorf("status %d for %s", status, url)
			wait := retryAfter
			if wait == 0 {
				wait = c.Cooldown
			}
			slog.Debug("pfr rate limited", "url", url, "wait", wait)
			if err := sleep(ctx, wait); err != nil {
				return "", err
			}
			continue
		case status >= 500:
			last = fmt.Errorf("status %d for %s", status, url)
		default:
			return "", fmt.Errorf("status %d for %s (body len=%d)", status, url, len(body))
		}
		if attempt < attempts-1 {
			if err := sleep(ctx, backoff(attempt, c.RetryBase, c.RetryMax)); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("exhausted retries for %s: %w", url, last)
}

func (c *Client) once(ctx context.Context, url, referer string) (string, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", 0, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, 0, err
	}
	return string(b), resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}
