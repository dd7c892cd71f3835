package osu

import "math"

// Accuracy returns the score accuracy as a percentage rounded to two
// decimals. reported is the API's own 0..1 accuracy, used for catch
// where the judgement counts alone are ambiguous.
func Accuracy(mode Mode, s ScoreStatistics, reported float64) float64 {
	c300 := float64(s.Count300)
	c100 := float64(s.Count100)
	c50 := float64(s.Count50)
	miss := float64(s.CountMiss)
	geki := float64(s.CountGeki)
	katu := float64(s.CountKatu)

	var acc float64
	switch mode {
	case ModeTaiko:
		total := c300 + c100 + miss
		if total == 0 {
			return 0
		}
		acc = (c300 + 0.5*c100) / total * 100
	case ModeFruits:
		if reported > 0 {
			acc = reported * 100
			break
		}
		total := c300 + c100 + c50 + miss + katu
		if total == 0 {
			return 0
		}
		acc = (c300 + c100 + c50) / total * 100
	case ModeMania:
		total := (geki + c300 + katu + c100 + c50 + miss) * 320
		if total == 0 {
			return 0
		}
		acc = (320*geki + 300*c300 + 200*katu + 100*c100 + 50*c50) / total * 100
	default:
		total := c300 + c100 + c50 + miss
		if total == 0 {
			return 0
		}
		acc = (300*c300 + 100*c100 + 50*c50) / (300 * total) * 100
	}
	return math.Round(acc*100) / 100
}
