package pbp

// Predicate selects plays. Comparisons against blank (NaN) cells are false.
type Predicate func(p *Play) bool

func And(ps ...Predicate) Predicate {
	return func(p *Play) bool {
		for _, f := range ps {
			if !f(p) {
				return false
			}
		}
		return true
	}
}

func Or(ps ...Predicate) Predicate {
	return func(p *Play) bool {
		for _, f := range ps {
			if f(p) {
				return true
			}
		}
		return false
	}
}

func Not(f Predicate) Predicate {
	return func(p *Play) bool { return !f(p) }
}

func Any(*Play) bool { return true }

var (
	RegularSeason Predicate = SeasonType("REG")
	Postseason    Predicate = SeasonType("POST")
	RunOrPass     Predicate = PlayTypeIn("run", "pass")

	Converted      Predicate = func(p *Play) bool { return p.Converted() }
	Touchdown      Predicate = func(p *Play) bool { return p.Touchdown }
	FieldGoalTry   Predicate = func(p *Play) bool { return p.FieldGoalAttempt }
	HasEPA         Predicate = func(p *Play) bool { return p.HasEPA() }
	HasWPA         Predicate = func(p *Play) bool { return p.HasWPA() }
	SpecialTeams   Predicate = func(p *Play) bool { return p.SpecialTeams }
	PassOrRush     Predicate = func(p *Play) bool { return p.PassAttempt || p.RushAttempt }
	Dropback       Predicate = func(p *Play) bool { return p.QBDropback }
	ThirdDownKnown Predicate = func(p *Play) bool {
		return p.ThirdDownConverted.Known() || p.ThirdDownFailed.Known()
	}
	FourthDownKnown Predicate = func(p *Play) bool {
		return p.FourthDownConverted.Known() || p.FourthDownFailed.Known()
	}
	ThirdDownConverted  Predicate = func(p *Play) bool { return p.ThirdDownConverted.IsYes() }
	FourthDownConverted Predicate = func(p *Play) bool { return p.FourthDownConverted.IsYes() }
)

func SeasonType(t string) Predicate {
	return func(p *Play) bool { return p.SeasonType == t }
}

func SeasonBetween(from, to int) Predicate {
	return func(p *Play) bool { return p.Season >= from && p.Season <= to }
}

func Offense(team string) Predicate {
	return func(p *Play) bool { return p.PosTeam == team }
}

func Defense(team string) Predicate {
	return func(p *Play) bool { return p.DefTeam == team }
}

// Involving matches every play of a game team played in.
func Involving(team string) Predicate {
	return func(p *Play) bool { return p.Involves(team) }
}

func Down(n int) Predicate {
	return func(p *Play) bool { return p.Down == n }
}

func PlayTypeIn(types ...string) Predicate {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(p *Play) bool {
		_, ok := set[p.PlayType]
		return ok
	}
}

func YardlineAtMost(y float64) Predicate {
	return func(p *Play) bool { return p.Yardline100 <= y }
}

func YardlineAtLeast(y float64) Predicate {
	return func(p *Play) bool { return p.Yardline100 >= y }
}

// YardlineBetween is exclusive at both ends.
func YardlineBetween(lo, hi float64) Predicate {
	return func(p *Play) bool { return p.Yardline100 > lo && p.Yardline100 < hi }
}

func YardsGainedAtLeast(y float64) Predicate {
	return func(p *Play) bool { return p.YardsGained >= y }
}

// Filter returns the plays matching f. The result shares no storage with plays.
func Filter(plays []Play, f Predicate) []Play {
	var out []Play
	for i := range plays {
		if f(&plays[i]) {
			out = append(out, plays[i])
		}
	}
	return out
}

func Count(plays []Play, f Predicate) int {
	n := 0
	for i := range plays {
		if f(&plays[i]) {
			n++
		}
	}
	return n
}

// SumOf adds v over the plays matching f, skipping NaN values.
func SumOf(plays []Play, f Predicate, v func(*Play) float64) float64 {
	total := 0.0
	for i := range plays {
		p := &plays[i]
		if !f(p) {
			continue
		}
		if x := v(p); x == x {
			total += x
		}
	}
	return total
}
