package pbp

import "math"

// Tri is a 0/1 column that may be blank on a row (nflverse writes NA).
type Tri int8

const (
	Missing Tri = -1
	No      Tri = 0
	Yes     Tri = 1
)

func (t Tri) Known() bool { return t != Missing }
func (t Tri) IsYes() bool { return t == Yes }

// Play is one row of nflverse play-by-play. Numeric cells that were blank
// or NA are NaN; flags that were blank are false.
type Play struct {
	GameID     string `parquet:"game_id"`
	Season     int    `parquet:"season"`
	SeasonType string `parquet:"season_type"`
	Week       int    `parquet:"week"`
	HomeTeam   string `parquet:"home_team"`
	AwayTeam   string `parquet:"away_team"`
	PosTeam    string `parquet:"posteam"`
	DefTeam    string `parquet:"defteam"`
	Drive      int    `parquet:"drive"`

	Down                 int     `parquet:"down"`
	YardsToGo            int     `parquet:"ydstogo"`
	Yardline100          float64 `parquet:"yardline_100"`
	PlayType             string  `parquet:"play_type"`
	HalfSecondsRemaining float64 `parquet:"half_seconds_remaining"`

	Qtr                     int     `parquet:"qtr"`
	QuarterSecondsRemaining float64 `parquet:"quarter_seconds_remaining"`
	HomeTimeoutsRemaining   float64 `parquet:"home_timeouts_remaining"`
	AwayTimeoutsRemaining   float64 `parquet:"away_timeouts_remaining"`
	Shotgun                 bool    `parquet:"shotgun"`
	NoHuddle                bool    `parquet:"no_huddle"`

	YardsGained     float64 `parquet:"yards_gained"`
	EPA             float64 `parquet:"epa"`
	QBEPA           float64 `parquet:"qb_epa"`
	WPA             float64 `parquet:"wpa"`
	CPOE            float64 `parquet:"cpoe"`
	AirYards        float64 `parquet:"air_yards"`
	YardsAfterCatch float64 `parquet:"yards_after_catch"`
	PassingYards    float64 `parquet:"passing_yards"`
	ReceivingYards  float64 `parquet:"receiving_yards"`
	RushingYards    float64 `parquet:"rushing_yards"`
	PenaltyYards    float64 `parquet:"penalty_yards"`
	ReturnYards     float64 `parquet:"return_yards"`

	FirstDown        bool `parquet:"first_down"`
	Touchdown        bool `parquet:"touchdown"`
	PassTouchdown    bool `parquet:"pass_touchdown"`
	Interception     bool `parquet:"interception"`
	FumbleLost       bool `parquet:"fumble_lost"`
	PassAttempt      bool `parquet:"pass_attempt"`
	RushAttempt      bool `parquet:"rush_attempt"`
	CompletePass     bool `parquet:"complete_pass"`
	IncompletePass   bool `parquet:"incomplete_pass"`
	Sack             bool `parquet:"sack"`
	QBHit            bool `parquet:"qb_hit"`
	QBDropback       bool `parquet:"qb_dropback"`
	QBScramble       bool `parquet:"qb_scramble"`
	QBSpike          bool `parquet:"qb_spike"`
	QBKneel          bool `parquet:"qb_kneel"`
	Success          bool `parquet:"success"`
	Penalty          bool `parquet:"penalty"`
	SpecialTeams     bool `parquet:"special_teams_play"`
	FieldGoalAttempt bool `parquet:"field_goal_attempt"`
	ReturnTouchdown  bool `parquet:"return_touchdown"`
	Replay           bool `parquet:"replay_or_challenge"`

	ThirdDownConverted  Tri `parquet:"third_down_converted"`
	ThirdDownFailed     Tri `parquet:"third_down_failed"`
	FourthDownConverted Tri `parquet:"fourth_down_converted"`
	FourthDownFailed    Tri `parquet:"fourth_down_failed"`

	PosTeamScore     float64 `parquet:"posteam_score"`
	PosTeamScorePost float64 `parquet:"posteam_score_post"`
	TotalHomeScore   float64 `parquet:"total_home_score"`
	TotalAwayScore   float64 `parquet:"total_away_score"`
	HomeScore        float64 `parquet:"home_score"`
	AwayScore        float64 `parquet:"away_score"`

	PenaltyTeam string `parquet:"penalty_team"`
	PasserName  string `parquet:"passer_player_name"`
	PasserID    string `parquet:"passer_player_id"`
	RusherName  string `parquet:"rusher_player_name"`

	FieldGoalResult string `parquet:"field_goal_result"`
	ReplayResult    string `parquet:"replay_or_challenge_result"`
	ReturnTeam      string `parquet:"return_team"`
	PuntReturner    string `parquet:"punt_returner_player_name"`
	KickoffReturner string `parquet:"kickoff_returner_player_name"`
}

// Involves reports whether team played in the play's game.
func (p *Play) Involves(team string) bool {
	return p.HomeTeam == team || p.AwayTeam == team
}

// Opponent returns the other side of the game from team's point of view.
func (p *Play) Opponent(team string) string {
	if p.HomeTeam == team {
		return p.AwayTeam
	}
	return p.HomeTeam
}

func (p *Play) HasEPA() bool { return !math.IsNaN(p.EPA) }
func (p *Play) HasWPA() bool { return !math.IsNaN(p.WPA) }

// Converted is the usual success test for a down: first down or touchdown.
func (p *Play) Converted() bool { return p.FirstDown || p.Touchdown }

// NewPlay returns a Play with every numeric column blank.
func NewPlay() Play {
	nan := math.NaN()
	return Play{
		Yardline100:             nan,
		HalfSecondsRemaining:    nan,
		QuarterSecondsRemaining: nan,
		HomeTimeoutsRemaining:   nan,
		AwayTimeoutsRemaining:   nan,
		YardsGained:             nan,
		EPA:                     nan,
		QBEPA:                   nan,
		WPA:                     nan,
		CPOE:                    nan,
		AirYards:                nan,
		YardsAfterCatch:         nan,
		PassingYards:            nan,
		ReceivingYards:          nan,
		RushingYards:            nan,
		PenaltyYards:            nan,
		ReturnYards:             nan,
		ThirdDownConverted:      Missing,
		ThirdDownFailed:         Missing,
		FourthDownConverted:     Missing,
		FourthDownFailed:        Missing,
		PosTeamScore:            nan,
		PosTeamScorePost:        nan,
		TotalHomeScore:          nan,
		TotalAwayScore:          nan,
		HomeScore:               nan,
		AwayScore:               nan,
	}
}
