package pbp

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrSeasonMissing = errors.New("season file not found")
	ErrMissingColumn = errors.New("required column missing")
)

// Columns every report depends on. Anything else may be absent and reads as blank.
var requiredColumns = []string{
	"game_id", "season", "season_type", "home_team", "away_team",
	"posteam", "defteam", "down", "play_type",
}

type columns struct {
	gameID, season, seasonType, week, home, away, posteam, defteam, drive int

	down, ydstogo, yardline, playType, halfSecs int
	qtr, qtrSecs, homeTO, awayTO, shotgun, noHuddle int

	yardsGained, epa, qbEPA, wpa, cpoe, airYards, yac, passingYards, receivingYards int
	rushingYards, penaltyYards, returnYards int

	firstDown, touchdown, passTD, interception, fumbleLost int
	passAttempt, rushAttempt, complete, incomplete, sack, qbHit int
	dropback, scramble, spike, kneel, success, penalty, special int
	fgAttempt, returnTD, replay int
	thirdConv, thirdFail, fourthConv, fourthFail int
	posScore, posScorePost, totalHome, totalAway, homeScr, awayScr int
	penaltyTeam, passer, passerID, rusher int
	fgResult, replayResult, returnTeam, puntReturner, kickReturner int
}

func idxOf(hdr []string, name string) int {
	name = strings.ToLower(name)
	for i, h := range hdr {
		if strings.ToLower(strings.TrimSpace(h)) == name {
			return i
		}
	}
	return -1
}

func mapColumns(h []string) (columns, error) {
	for _, name := range requiredColumns {
		if idxOf(h, name) < 0 {
			return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	is := func(n string) int { return idxOf(h, n) }
	c := columns{
		gameID: is("game_id"), season: is("season"), seasonType: is("season_type"), week: is("week"),
		home: is("home_team"), away: is("away_team"), posteam: is("posteam"), defteam: is("defteam"),
		drive: is("drive"),

		down: is("down"), ydstogo: is("ydstogo"), yardline: is("yardline_100"), playType: is("play_type"),
		halfSecs: is("half_seconds_remaining"),

		qtr: is("qtr"), qtrSecs: is("quarter_seconds_remaining"),
		homeTO: is("home_timeouts_remaining"), awayTO: is("away_timeouts_remaining"),
		shotgun: is("shotgun"), noHuddle: is("no_huddle"),

		yardsGained: is("yards_gained"), epa: is("epa"), qbEPA: is("qb_epa"), wpa: is("wpa"),
		cpoe: is("cpoe"), airYards: is("air_yards"), yac: is("yards_after_catch"),
		passingYards: is("passing_yards"), receivingYards: is("receiving_yards"),
		rushingYards: is("rushing_yards"), penaltyYards: is("penalty_yards"), returnYards: is("return_yards"),

		firstDown: is("first_down"), touchdown: is("touchdown"), passTD: is("pass_touchdown"),
		interception: is("interception"), fumbleLost: is("fumble_lost"),
		passAttempt: is("pass_attempt"), rushAttempt: is("rush_attempt"),
		complete: is("complete_pass"), incomplete: is("incomplete_pass"), sack: is("sack"), qbHit: is("qb_hit"),
		dropback: is("qb_dropback"), scramble: is("qb_scramble"), spike: is("qb_spike"), kneel: is("qb_kneel"),
		success: is("success"), penalty: is("penalty"), special: is("special_teams_play"),
		fgAttempt: is("field_goal_attempt"), returnTD: is("return_touchdown"), replay: is("replay_or_challenge"),

		thirdConv: is("third_down_converted"), thirdFail: is("third_down_failed"),
		fourthConv: is("fourth_down_converted"), fourthFail: is("fourth_down_failed"),

		posScore: is("posteam_score"), posScorePost: is("posteam_score_post"),
		totalHome: is("total_home_score"), totalAway: is("total_away_score"),
		homeScr: is("home_score"), awayScr: is("away_score"),

		penaltyTeam: is("penalty_team"), passer: is("passer_player_name"),
		passerID: is("passer_player_id"), rusher: is("rusher_player_name"),

		fgResult: is("field_goal_result"), replayResult: is("replay_or_challenge_result"),
		returnTeam: is("return_team"), puntReturner: is("punt_returner_player_name"),
		kickReturner: is("kickoff_returner_player_name"),
	}
	if c.special < 0 {
		c.special = is("special")
	}
	return c, nil
}

func get(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	s := strings.TrimSpace(rec[i])
	if s == "NA" {
		return ""
	}
	return s
}

func parseFloat(rec []string, i int) float64 {
	s := get(rec, i)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInt(rec []string, i int) int {
	f := parseFloat(rec, i)
	if math.IsNaN(f) {
		return 0
	}
	return int(f)
}

func parseFlag(rec []string, i int) bool {
	return parseFloat(rec, i) == 1
}

func parseTri(rec []string, i int) Tri {
	f := parseFloat(rec, i)
	switch {
	case math.IsNaN(f):
		return Missing
	case f == 1:
		return Yes
	default:
		return No
	}
}

func (c columns) play(rec []string) Play {
	return Play{
		GameID:     get(rec, c.gameID),
		Season:     parseInt(rec, c.season),
		SeasonType: get(rec, c.seasonType),
		Week:       parseInt(rec, c.week),
		HomeTeam:   strings.ToUpper(get(rec, c.home)),
		AwayTeam:   strings.ToUpper(get(rec, c.away)),
		PosTeam:    strings.ToUpper(get(rec, c.posteam)),
		DefTeam:    strings.ToUpper(get(rec, c.defteam)),
		Drive:      parseInt(rec, c.drive),

		Down:                 parseInt(rec, c.down),
		YardsToGo:            parseInt(rec, c.ydstogo),
		Yardline100:          parseFloat(rec, c.yardline),
		PlayType:             get(rec, c.playType),
		HalfSecondsRemaining: parseFloat(rec, c.halfSecs),

		Qtr:                     parseInt(rec, c.qtr),
		QuarterSecondsRemaining: parseFloat(rec, c.qtrSecs),
		HomeTimeoutsRemaining:   parseFloat(rec, c.homeTO),
		AwayTimeoutsRemaining:   parseFloat(rec, c.awayTO),
		Shotgun:                 parseFlag(rec, c.shotgun),
		NoHuddle:                parseFlag(rec, c.noHuddle),

		YardsGained:     parseFloat(rec, c.yardsGained),
		EPA:             parseFloat(rec, c.epa),
		QBEPA:           parseFloat(rec, c.qbEPA),
		WPA:             parseFloat(rec, c.wpa),
		CPOE:            parseFloat(rec, c.cpoe),
		AirYards:        parseFloat(rec, c.airYards),
		YardsAfterCatch: parseFloat(rec, c.yac),
		PassingYards:    parseFloat(rec, c.passingYards),
		ReceivingYards:  parseFloat(rec, c.receivingYards),
		RushingYards:    parseFloat(rec, c.rushingYards),
		PenaltyYards:    parseFloat(rec, c.penaltyYards),
		ReturnYards:     parseFloat(rec, c.returnYards),

		FirstDown:        parseFlag(rec, c.firstDown),
		Touchdown:        parseFlag(rec, c.touchdown),
		PassTouchdown:    parseFlag(rec, c.passTD),
		Interception:     parseFlag(rec, c.interception),
		FumbleLost:       parseFlag(rec, c.fumbleLost),
		PassAttempt:      parseFlag(rec, c.passAttempt),
		RushAttempt:      parseFlag(rec, c.rushAttempt),
		CompletePass:     parseFlag(rec, c.complete),
		IncompletePass:   parseFlag(rec, c.incomplete),
		Sack:             parseFlag(rec, c.sack),
		QBHit:            parseFlag(rec, c.qbHit),
		QBDropback:       parseFlag(rec, c.dropback),
		QBScramble:       parseFlag(rec, c.scramble),
		QBSpike:          parseFlag(rec, c.spike),
		QBKneel:          parseFlag(rec, c.kneel),
		Success:          parseFlag(rec, c.success),
		Penalty:          parseFlag(rec, c.penalty),
		SpecialTeams:     parseFlag(rec, c.special),
		FieldGoalAttempt: parseFlag(rec, c.fgAttempt),
		ReturnTouchdown:  parseFlag(rec, c.returnTD),
		Replay:           parseFlag(rec, c.replay),

		ThirdDownConverted:  parseTri(rec, c.thirdConv),
		ThirdDownFailed:     parseTri(rec, c.thirdFail),
		FourthDownConverted: parseTri(rec, c.fourthConv),
		FourthDownFailed:    parseTri(rec, c.fourthFail),

		PosTeamScore:     parseFloat(rec, c.posScore),
		PosTeamScorePost: parseFloat(rec, c.posScorePost),
		TotalHomeScore:   parseFloat(rec, c.totalHome),
		TotalAwayScore:   parseFloat(rec, c.totalAway),
		HomeScore:        parseFloat(rec, c.homeScr),
		AwayScore:        parseFloat(rec, c.awayScr),

		PenaltyTeam: strings.ToUpper(get(rec, c.penaltyTeam)),
		PasserName:  get(rec, c.passer),
		PasserID:    get(rec, c.passerID),
		RusherName:  get(rec, c.rusher),

		FieldGoalResult: get(rec, c.fgResult),
		ReplayResult:    get(rec, c.replayResult),
		ReturnTeam:      strings.ToUpper(get(rec, c.returnTeam)),
		PuntReturner:    get(rec, c.puntReturner),
		KickoffReturner: get(rec, c.kickReturner),
	}
}

// ReadCSV streams play rows from an nflverse play-by-play CSV.
func ReadCSV(r io.Reader) ([]Play, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(hdr)
	if err != nil {
		return nil, err
	}

	plays := make([]Play, 0, 50000)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		plays = append(plays, cols.play(rec))
	}
	return plays, nil
}

// LoadFile reads a season file. Files ending in .gz are decompressed and
// .parquet files are read as written by WriteParquet.
func LoadFile(path string) ([]Play, error) {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return ReadParquetFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	plays, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plays, nil
}
