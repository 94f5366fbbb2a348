package pbp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const leagueCSV = `game_id,home_team,away_team,extra
g1,BAL,HOU,a
g1,BAL,HOU,b
g2,KC,DET,c
g3,PIT,BAL,d
g4,CIN,BAL,e
`

func TestFilterCSV(t *testing.T) {
	var out bytes.Buffer
	st, err := FilterCSV(strings.NewReader(leagueCSV), &out, "bal")
	require.NoError(t, err)

	require.Equal(t, 5, st.OriginalRows)
	require.Equal(t, 4, st.FilteredRows)
	require.Equal(t, 1, st.RowsRemoved())
	require.Equal(t, 3, st.Games)
	require.Equal(t, 1, st.HomeGames)
	require.Equal(t, 2, st.AwayGames)
	require.Equal(t, []string{"CIN", "HOU", "PIT"}, st.OpponentList())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "game_id,home_team,away_team,extra", lines[0])
	require.Equal(t, "g1,BAL,HOU,b", lines[2])
}

func TestCleanFile_InPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play_by_play_2024.csv")
	require.NoError(t, os.WriteFile(path, []byte(leagueCSV), 0o644))

	st, err := CleanFile(path, "", "BAL")
	require.NoError(t, err)
	require.Equal(t, 4, st.FilteredRows)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(b), "KC")
}
