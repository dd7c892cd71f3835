package beatmap

import (
	"errors"
	"math"

	"osubot/pkg/osu"
)

var ErrUnsupportedMode = errors.New("beatmap: no local estimate for this mode")

// Estimate is a locally computed full-combo SS value.
type Estimate struct {
	PP       float64
	Stars    float64
	MaxCombo int
}

// EstimatePerformance approximates SS performance from the API's
// difficulty attributes and the parsed .osu file for all four modes. It
// is only used when the API returns no PP value. The star rating and skill
// values come from the API, so only the performance stage is computed here.
func EstimatePerformance(mode osu.Mode, attrs *osu.DifficultyAttributes, f *File, mods []string) (Estimate, error) {
	if attrs == nil || f == nil {
		return Estimate{}, errors.New("beatmap: estimate needs attributes and file")
	}

	est := Estimate{Stars: attrs.StarRating, MaxCombo: attrs.MaxCombo}
	switch mode {
	case osu.ModeOsu:
		est.PP = standardPP(attrs, f, mods)
	case osu.ModeTaiko:
		est.PP = taikoPP(attrs, f, mods)
	case osu.ModeFruits:
		est.PP = catchPP(attrs, f, mods)
	case osu.ModeMania:
		est.PP = maniaPP(attrs, f, mods)
	default:
		return Estimate{}, ErrUnsupportedMode
	}
	if est.MaxCombo == 0 {
		est.MaxCombo = f.Objects()
	}
	return est, nil
}

func standardPP(attrs *osu.DifficultyAttributes, f *File, mods []string) float64 {
	ar := valueOr(attrs.ApproachRate, f.AR)
	od := valueOr(attrs.OverallDifficulty, f.OD)
	objects := float64(f.Objects())
	hidden := osu.HasMod(mods, "HD")
	flashlight := osu.HasMod(mods, "FL")

	lengthBonus := 0.95 + 0.4*math.Min(1, objects/2000)
	if objects > 2000 {
		lengthBonus += math.Log10(objects/2000) * 0.5
	}

	arFactor := 0.0
	if ar > 10.33 {
		arFactor = 0.3 * (ar - 10.33)
	} else if ar < 8 {
		arFactor = 0.05 * (8 - ar)
	}

	aim := skillValue(attrs.AimDifficulty) * lengthBonus
	aim *= 1 + arFactor*lengthBonus
	if hidden {
		aim *= 1 + 0.04*(12-ar)
	}
	aim *= 0.98 + od*od/2500

	speed := skillValue(attrs.SpeedDifficulty) * lengthBonus
	if ar > 10.33 {
		speed *= 1 + 0.3*(ar-10.33)*lengthBonus
	}
	if hidden {
		speed *= 1 + 0.04*(12-ar)
	}
	speed *= 0.95 + od*od/750

	acc := math.Pow(1.52163, od) * 2.83 * math.Min(1.15, math.Pow(float64(f.Circles)/1000, 0.3))
	if hidden {
		acc *= 1.08
	}
	if flashlight {
		acc *= 1.02
	}

	fl := 0.0
	if flashlight {
		fl = attrs.FlashlightDifficulty * attrs.FlashlightDifficulty * 25
		fl *= 0.7 + 0.1*math.Min(1, objects/200)
		if objects > 200 {
			fl += 0.2 * math.Min(1, (objects-200)/200)
		}
	}

	total := math.Pow(
		math.Pow(aim, 1.1)+math.Pow(speed, 1.1)+math.Pow(acc, 1.1)+math.Pow(fl, 1.1),
		1/1.1,
	) * 1.14

	if osu.HasMod(mods, "NF") {
		total *= 0.9
	}
	if osu.HasMod(mods, "SO") && objects > 0 {
		total *= 1 - math.Pow(float64(f.Spinners)/objects, 0.85)
	}
	return total
}

func skillValue(difficulty float64) float64 {
	return math.Pow(5*math.Max(1, difficulty/0.0675)-4, 3) / 100000
}

func taikoPP(attrs *osu.DifficultyAttributes, f *File, mods []string) float64 {
	hits := float64(f.Circles)
	if hits == 0 {
		hits = float64(f.Objects())
	}
	hidden := osu.HasMod(mods, "HD")
	flashlight := osu.HasMod(mods, "FL")

	lengthBonus := 1 + 0.1*math.Min(1, hits/1500)
	strain := math.Pow(5*math.Max(1, attrs.StarRating/0.115)-4, 2.25) / 1150 * lengthBonus
	if hidden {
		strain *= 1.025
	}
	if flashlight {
		strain *= 1.05 * lengthBonus
	}

	// The great window in ms shrinks by 3 per OD point from 50 at OD 0.
	window := 50 - 3*valueOr(attrs.OverallDifficulty, f.OD)
	if attrs.GreatHitWindow != nil {
		window = *attrs.GreatHitWindow
	}
	acc := 0.0
	if window > 0 {
		acc = math.Pow(60/window, 1.1) * math.Pow(attrs.StarRating, 0.4) * 27
		acc *= math.Min(1.15, math.Pow(hits/1500, 0.3))
		if hidden && flashlight {
			acc *= math.Max(1.05, 1.075*lengthBonus)
		}
	}

	multiplier := 1.13
	if hidden {
		multiplier *= 1.075
	}
	if osu.HasMod(mods, "NF") {
		multiplier *= 0.9
	}
	return math.Pow(math.Pow(strain, 1.1)+math.Pow(acc, 1.1), 1/1.1) * multiplier
}

func catchPP(attrs *osu.DifficultyAttributes, f *File, mods []string) float64 {
	ar := valueOr(attrs.ApproachRate, f.AR)
	combo := float64(attrs.MaxCombo)
	if combo == 0 {
		combo = float64(f.Objects())
	}

	pp := math.Pow(5*math.Max(1, attrs.StarRating/0.0049)-4, 2) / 100000

	lengthBonus := 0.95 + 0.3*math.Min(1, combo/2500)
	if combo > 2500 {
		lengthBonus += math.Log10(combo/2500) * 0.475
	}
	pp *= lengthBonus

	arFactor := 1.0
	if ar > 9 {
		arFactor += 0.1 * (ar - 9)
	}
	if ar > 10 {
		arFactor += 0.1 * (ar - 10)
	} else if ar < 8 {
		arFactor += 0.025 * (8 - ar)
	}
	pp *= arFactor

	if osu.HasMod(mods, "HD") {
		if ar <= 10 {
			pp *= 1.05 + 0.075*(10-ar)
		} else {
			pp *= 1.01 + 0.04*(11-math.Min(11, ar))
		}
	}
	if osu.HasMod(mods, "FL") {
		pp *= 1.35 * lengthBonus
	}
	if osu.HasMod(mods, "NF") {
		pp *= 0.9
	}
	return pp
}

func maniaPP(attrs *osu.DifficultyAttributes, f *File, mods []string) float64 {
	objects := float64(f.Objects())
	pp := 8 * math.Pow(math.Max(attrs.StarRating-0.15, 0.05), 2.2) * (1 + 0.1*math.Min(1, objects/1500))
	if osu.HasMod(mods, "NF") {
		pp *= 0.75
	}
	if osu.HasMod(mods, "EZ") {
		pp *= 0.5
	}
	return pp
}

func valueOr(p *float64, fallback float64) float64 {
	if p != nil {
		return *p
	}
	return fallback
}
