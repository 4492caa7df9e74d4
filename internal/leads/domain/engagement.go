package domain

import "math"

// EngagementScore rates a profile from 0 to 100. The interaction rate is
// (likes + 2*comments) / followers as a percentage, scaled by 10 and capped
// at 100. Large audiences get a bonus of one point per 10k followers, capped
// at 20. The sum is capped at 100 and rounded to two decimals.
func EngagementScore(followers int64, avgLikes, avgComments float64) float64 {
	if followers <= 0 {
		return 0
	}

	f := float64(followers)
	rate := (avgLikes + avgComments*2) / f * 100
	score := math.Min(100, rate*10)
	bonus := math.Min(20, f/10000)

	return math.Round(math.Min(100, score+bonus)*100) / 100
}

// ClampScore keeps a client-provided score in range.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return math.Min(100, score)
}
