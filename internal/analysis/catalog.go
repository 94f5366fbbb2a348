package analysis

import (
	"github.com/tyler180/nfl-pbp-reports/internal/pbp"
	"github.com/tyler180/nfl-pbp-reports/internal/rollup"
	"github.com/tyler180/nfl-pbp-reports/internal/stats"
)

// Eligibility shared by several reports.
var (
	// FourthDownAttempt is a regular-season fourth down where the offense ran or threw.
	FourthDownAttempt = pbp.And(pbp.RegularSeason, pbp.Down(4), pbp.RunOrPass)

	// FourthDownDecision is a fourth down the offense went for, as tracked by
	// the conversion columns, in any season phase.
	FourthDownDecision = pbp.And(pbp.Down(4), pbp.FourthDownKnown, pbp.Not(pbp.PlayTypeIn("punt", "field_goal")))

	ThirdDownAttempt = pbp.And(pbp.Down(3), pbp.ThirdDownKnown)

	RedZonePlay = pbp.And(pbp.YardlineAtMost(20), pbp.Or(pbp.RunOrPass, pbp.Touchdown, pbp.FieldGoalTry))

	OwnTerritory = pbp.YardlineAtLeast(51)
	OppTerritory = pbp.YardlineBetween(20, 51)
	RedZone      = pbp.YardlineAtMost(20)
)

// Zone is a field-position bucket.
type Zone struct {
	Name  string
	Label string
	In    pbp.Predicate
}

var Zones = []Zone{
	{Name: "own_territory", Label: "Own territory (own 1-49)", In: OwnTerritory},
	{Name: "opp_territory", Label: "Opponent territory (opp 49-21)", In: OppTerritory},
	{Name: "red_zone", Label: "Red zone (opp 20-1)", In: RedZone},
}

var (
	FourthDownRate = rollup.Definition{
		Name:     "fourth_down_conversion_rate",
		Key:      rollup.ByOffense,
		Eligible: FourthDownAttempt,
		Success:  pbp.Converted,
		Kind:     rollup.KindRate,
		Better:   stats.HigherIsBetter,
	}

	FourthDownGoRate = rollup.Definition{
		Name:     "fourth_down_go_rate",
		Key:      rollup.ByOffense,
		Eligible: FourthDownDecision,
		Success:  pbp.FourthDownConverted,
		Kind:     rollup.KindRate,
		Better:   stats.HigherIsBetter,
	}

	ThirdDownRate = rollup.Definition{
		Name:     "third_down_conversion_rate",
		Key:      rollup.ByOffense,
		Eligible: ThirdDownAttempt,
		Success:  pbp.ThirdDownConverted,
		Kind:     rollup.KindRate,
		Better:   stats.HigherIsBetter,
	}

	ThirdDownAllowed = rollup.Definition{
		Name:     "third_down_rate_allowed",
		Key:      rollup.ByDefense,
		Eligible: pbp.And(pbp.RegularSeason, pbp.Down(3)),
		Success:  pbp.Converted,
		Kind:     rollup.KindRate,
		Better:   stats.LowerIsBetter,
	}

	RedZoneTD = rollup.Definition{
		Name:     "red_zone_td_rate",
		Key:      rollup.ByOffense,
		Eligible: RedZonePlay,
		Success:  pbp.Touchdown,
		Kind:     rollup.KindRate,
		Unit:     rollup.UnitDrive,
		Better:   stats.HigherIsBetter,
	}

	RedZoneFG = rollup.Definition{
		Name:     "red_zone_fg_rate",
		Key:      rollup.ByOffense,
		Eligible: RedZonePlay,
		Success:  pbp.FieldGoalTry,
		Kind:     rollup.KindRate,
		Unit:     rollup.UnitDrive,
		Better:   stats.LowerIsBetter,
	}

	OffenseEPA = rollup.Definition{
		Name:     "offense_epa_per_play",
		Key:      rollup.ByOffense,
		Eligible: pbp.HasEPA,
		Value:    epa,
		Kind:     rollup.KindMean,
		Better:   stats.HigherIsBetter,
	}

	DefenseEPA = rollup.Definition{
		Name:     "defense_epa_per_play",
		Key:      rollup.ByDefense,
		Eligible: pbp.And(pbp.RegularSeason, pbp.RunOrPass),
		Value:    epa,
		Kind:     rollup.KindMean,
		Better:   stats.LowerIsBetter,
	}

	DefenseYards = rollup.Definition{
		Name:     "defense_yards_allowed",
		Key:      rollup.ByDefense,
		Eligible: pbp.And(pbp.RegularSeason, pbp.RunOrPass),
		Value:    func(p *pbp.Play) float64 { return zeroNaN(p.YardsGained) },
		Kind:     rollup.KindSum,
		Better:   stats.LowerIsBetter,
	}

	OffenseWPA = rollup.Definition{
		Name:     "offense_wpa",
		Key:      rollup.ByOffense,
		Eligible: pbp.And(pbp.RegularSeason, pbp.HasWPA),
		Value:    wpa,
		Kind:     rollup.KindSum,
		Better:   stats.HigherIsBetter,
	}
)

// Catalog lists the definitions that rank a team league-wide for one
// season. The stat command prints any of them by name.
var Catalog = []rollup.Definition{
	FourthDownRate,
	FourthDownGoRate,
	ThirdDownRate,
	ThirdDownAllowed,
	RedZoneTD,
	RedZoneFG,
	OffenseEPA,
	DefenseEPA,
	DefenseYards,
	OffenseWPA,
}

// Lookup finds a catalog definition by name.
func Lookup(name string) (rollup.Definition, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return rollup.Definition{}, false
}
