package profile

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoHistory = errors.New("profile: not enough rank history to chart")

const (
	ChartWidth  = 600
	ChartHeight = 200

	// The chart is rendered at this multiple and scaled down for smoothing.
	supersample = 2
	padding     = 12
	lineWidth   = 2
	chartDPI    = 92
)

var (
	chartBackground = drawing.Color{R: 0x2b, G: 0x2d, B: 0x31, A: 0xff}
	chartAxis       = drawing.Color{R: 0x9a, G: 0x9c, B: 0xa2, A: 0xff}
	chartLine       = drawing.Color{R: 0xff, G: 0xcc, B: 0x22, A: 0xff}
)

// RankChart draws the rank history as a PNG line chart. Better (lower)
// ranks are plotted higher. Zero entries mean "unranked" and are skipped.
func RankChart(history []int, width, height int) ([]byte, error) {
	var xs, ys []float64
	for _, r := range history {
		if r > 0 {
			xs = append(xs, float64(len(xs)))
			ys = append(ys, float64(r))
		}
	}
	if len(ys) < 2 {
		return nil, ErrNoHistory
	}
	if width <= 0 || height <= 0 {
		width, height = ChartWidth, ChartHeight
	}

	best, worst := ys[0], ys[0]
	for _, r := range ys {
		best = min(best, r)
		worst = max(worst, r)
	}
	if best == worst {
		best, worst = max(best-1, 0), worst+1
	}

	pad := padding * supersample
	graph := chart.Chart{
		Width:  width * supersample,
		Height: height * supersample,
		DPI:    chartDPI * supersample,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: pad, Left: pad, Right: pad, Bottom: pad},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartAxis, StrokeColor: chartAxis},
			Range: &chart.ContinuousRange{Min: best, Max: worst, Descending: true},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return "#" + strconv.Itoa(int(f))
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chartLine,
					StrokeWidth: float64(lineWidth * supersample),
				},
			},
		},
	}

	var rendered bytes.Buffer
	if err := graph.Render(chart.PNG, &rendered); err != nil {
		return nil, fmt.Errorf("failed to render rank chart: %w", err)
	}
	img, err := imaging.Decode(&rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rank chart: %w", err)
	}
	out := imaging.Resize(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
