package pfr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const standingsHTML = `<html><body>
<div id="all_AFC"><!--
<table id="AFC"><tbody>
<tr class="thead onecell"><td colspan="13">AFC North</td></tr>
<tr><th data-stat="team"><a href="/teams/rav/2023.htm">Baltimore Ravens</a>*</th>
<td data-stat="wins">13</td><td data-stat="losses">4</td><td data-stat="points">483</td><td data-stat="points_opp">280</td></tr>
<tr><th data-stat="team"><a href="/teams/pit/2023.htm">Pittsburgh Steelers</a>+</th>
<td data-stat="wins">10</td><td data-stat="losses">7</td><td data-stat="points">304</td><td data-stat="points_opp">324</td></tr>
</tbody></table>
--></div>
<table id="NFC"><tbody>
<tr class="thead onecell"><td colspan="13">NFC West</td></tr>
<tr><th data-stat="team"><a href="/teams/sfo/2023.htm">San Francisco 49ers</a>*</th>
<td data-stat="wins">12</td><td data-stat="losses">5</td><td data-stat="points">491</td><td data-stat="points_opp">298</td></tr>
<tr><th data-stat="team"><a href="/teams/crd/2023.htm">Arizona Cardinals</a></th>
<td data-stat="wins">4</td><td data-stat="losses">13</td><td data-stat="ties">0</td><td data-stat="points">330</td><td data-stat="points_opp">455</td></tr>
</tbody></table>
</body></html>`

func TestParseStandings(t *testing.T) {
	got, err := ParseStandings(strings.NewReader(standingsHTML), 2023)
	require.NoError(t, err)
	require.Len(t, got, 4)

	require.Equal(t, "BAL", got[0].Team)
	require.Equal(t, 203, got[0].PointDiff())
	require.Equal(t, "AFC North", got[0].Division)
	require.True(t, got[0].Playoffs)
	require.Equal(t, "Baltimore Ravens", got[0].Name)

	require.Equal(t, "SF", got[1].Team)
	require.Equal(t, "NFC", got[1].Conference)

	last := got[3]
	require.Equal(t, "ARI", last.Team)
	require.False(t, last.Playoffs)
	require.Equal(t, "4-13", last.Record())
	require.Equal(t, -125, last.PointDiff())
}

func TestParseStandingsNoTables(t *testing.T) {
	_, err := ParseStandings(strings.NewReader("<html></html>"), 2023)
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"KAN": "KC", "kc": "KC", "OAK": "LV", "LAR": "LA", "SD": "LAC", "GNB": "GB", "BAL": "BAL", "xyz": "XYZ",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), in)
	}
	team, ok := TeamFromPath("/teams/nwe/2019.htm")
	require.True(t, ok)
	require.Equal(t, "NE", team)
	_, ok = TeamFromPath("/teams/zzz/2019.htm")
	require.False(t, ok)
}

func testClient(url string) *Client {
	c := NewClient()
	c.BaseURL = url
	c.MaxAttempts = 4
	c.RetryBase = time.Millisecond
	c.RetryMax = 5 * time.Millisecond
	c.Cooldown = time.Millisecond
	return c
}

func TestStandingsRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			fmt.Fprint(w, standingsHTML)
		}
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Standings(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetNonRetryable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Get(context.Background(), srv.URL+"/missing", "")
	require.ErrorContains(t, err, "status 404")
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Get(context.Background(), srv.URL, "")
	require.ErrorContains(t, err, "exhausted retries")
}

func TestParseRetryAfter(t *testing.T) {
	require.Equal(t, 3*time.Second, parseRetryAfter("3"))
	require.Zero(t, parseRetryAfter(""))
	require.Zero(t, parseRetryAfter("garbage"))
}
