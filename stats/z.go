package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// ScoreInterval returns the match score (a win counts 1, a draw 1/2) of
// one side over a series of games, with a normal-approximation confidence
// interval clamped to [0, 1].
func ScoreInterval(wins, draws, losses int, confidenceInterval float64) (score, lo, hi float64) {
	n := float64(wins + draws + losses)
	if n == 0 {
		return 0.5, 0, 1
	}
	score = (float64(wins) + 0.5*float64(draws)) / n
	dw, dd, dl := 1-score, 0.5-score, -score
	variance := (float64(wins)*dw*dw + float64(draws)*dd*dd + float64(losses)*dl*dl) / n
	margin := ZVal(confidenceInterval) * math.Sqrt(variance/n)
	return score, math.Max(0, score-margin), math.Min(1, score+margin)
}

// EloDifference converts a match score into a rating difference. It is
// infinite for a score of 0 or 1.
func EloDifference(score float64) float64 {
	switch {
	case score <= 0:
		return math.Inf(-1)
	case score >= 1:
		return math.Inf(1)
	}
	return -400 * math.Log10(1/score-1)
}
