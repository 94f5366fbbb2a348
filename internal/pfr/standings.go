package pfr

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Standing is one team's regular-season line from the league page.
type Standing struct {
	Season        int
	Conference    string
	Division      string
	Team          string // nflverse abbreviation
	Name          string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     int
	PointsAgainst int
	Playoffs      bool
}

func (s Standing) PointDiff() int { return s.PointsFor - s.PointsAgainst }

func (s Standing) Record() string {
	if s.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", s.Wins, s.Losses, s.Ties)
	}
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}

// Standings fetches and parses the league standings for season.
func (c *Client) Standings(ctx context.Context, season int) ([]Standing, error) {
	base := c.BaseURL
	if base == "" {
		base = BaseURL
	}
	url := fmt.Sprintf("%s/years/%d/", base, season)
	html, err := c.Get(ctx, url, base+"/")
	if err != nil {
		return nil, fmt.Errorf("fetch standings %d: %w", season, err)
	}
	return ParseStandings(strings.NewReader(html), season)
}

// uncomment drops HTML comment markers; PFR ships most tables commented out.
func uncomment(r io.Reader) (io.Reader, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := strings.ReplaceAll(string(b), "<!--", "")
	s = strings.ReplaceAll(s, "-->", "")
	return strings.NewReader(s), nil
}

func cellInt(row *goquery.Selection, stat string) int {
	txt := strings.TrimSpace(row.Find(fmt.Sprintf(`[data-stat=%q]`, stat)).First().Text())
	n, _ := strconv.Atoi(txt)
	return n
}

// ParseStandings reads the AFC and NFC tables, sorted by point differential.
func ParseStandings(r io.Reader, season int) ([]Standing, error) {
	clean, err := uncomment(r)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(clean)
	if err != nil {
		return nil, fmt.Errorf("parse standings: %w", err)
	}

	var out []Standing
	for _, conf := range []string{"AFC", "NFC"} {
		table := doc.Find("table#" + conf).First()
		division := ""
		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			if strings.Contains(tr.AttrOr("class", ""), "thead") {
				division = strings.TrimSpace(tr.Text())
				return
			}
			cell := tr.Find(`[data-stat="team"]`).First()
			name := strings.TrimSpace(cell.Text())
			if name == "" {
				return
			}
			s := Standing{
				Season:        season,
				Conference:    conf,
				Division:      division,
				Name:          strings.TrimRight(name, "*+ "),
				Playoffs:      strings.ContainsAny(name, "*+"),
				Wins:          cellInt(tr, "wins"),
				Losses:        cellInt(tr, "losses"),
				Ties:          cellInt(tr, "ties"),
				PointsFor:     cellInt(tr, "points"),
				PointsAgainst: cellInt(tr, "points_opp"),
			}
			if href, ok := cell.Find("a").Attr("href"); ok {
				s.Team, _ = TeamFromPath(href)
			}
			out = append(out, s)
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("standings %d: no AFC/NFC tables found", season)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PointDiff() != out[j].PointDiff() {
			return out[i].PointDiff() > out[j].PointDiff()
		}
		return out[i].Team < out[j].Team
	})
	return out, nil
}
