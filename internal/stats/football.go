package stats

import "math"

// NFLPythagoreanExponent is the exponent Football Outsiders fit for the NFL.
const NFLPythagoreanExponent = 2.37

// PasserRating is the NFL formula. Each component is clamped to [0, 2.375],
// so a perfect line rates 158.3 and a line with no attempts rates 0.
func PasserRating(comp, att, yds, td, ints float64) float64 {
	if att <= 0 {
		return 0
	}
	a := Clamp((comp/att-0.3)*5, 0, 2.375)
	b := Clamp((yds/att-3)*0.25, 0, 2.375)
	c := Clamp(td/att*20, 0, 2.375)
	d := Clamp(2.375-ints/att*25, 0, 2.375)
	return (a + b + c + d) / 6 * 100
}

// Pythagorean returns expected wins over games. With no points allowed the
// expectation is every game.
func Pythagorean(pf, pa float64, games int, exp float64) float64 {
	if pa == 0 {
		return float64(games)
	}
	pfe := math.Pow(pf, exp)
	return pfe / (pfe + math.Pow(pa, exp)) * float64(games)
}

// SeasonGames is the regular-season length: 16 games before 2021, 17 after.
func SeasonGames(season int) int {
	if season >= 2021 {
		return 17
	}
	return 16
}
