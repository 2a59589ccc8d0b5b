package tracker

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// metric describes one charted statistic.
type metric struct {
	name  string
	title string
	color drawing.Color
	value func(sample) *int64
}

var metrics = []metric{
	{"views", "Views", chart.ColorBlue, func(s sample) *int64 { return s.Views }},
	{"likes", "Likes", chart.ColorOrange, func(s sample) *int64 { return s.Likes }},
	{"subscribers", "Subscribers", chart.ColorGreen, func(s sample) *int64 { return s.Subscribers }},
}

// renderCharts draws one time-series PNG per metric into plotDir and returns
// the chart paths relative to the static root. A metric whose chart cannot be
// rendered is skipped; the other charts still come back.
func (t *Tracker) renderCharts(samples []sample, videoID string) []string {
	stamp := time.Now().Unix()
	times := make([]time.Time, len(samples))
	for i, s := range samples {
		times[i] = s.Time.In(t.loc)
	}

	var paths []string
	for _, m := range metrics {
		values := make([]float64, 0, len(samples))
		xs := make([]time.Time, 0, len(samples))
		for i, s := range samples {
			if v := m.value(s); v != nil {
				values = append(values, float64(*v))
				xs = append(xs, times[i])
			}
		}
		if len(values) < 2 {
			t.log.Warn("not enough data points for chart", "video_id", videoID, "metric", m.name)
			continue
		}

		name := fmt.Sprintf("%s_%s_%d.png", slug.Make(videoID), m.name, stamp)
		full := filepath.Join(t.plotDir, name)
		if err := t.renderChart(m, xs, values, videoID, full); err != nil {
			t.log.Warn("chart render failed", "video_id", videoID, "metric", m.name, "error", err)
			continue
		}
		paths = append(paths, path.Join(t.relBase, name))
	}
	return paths
}

func (t *Tracker) renderChart(m metric, xs []time.Time, values []float64, videoID, dest string) error {
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s over Time for video %s", m.title, videoID),
		Width:  1000,
		Height: 500,
		XAxis: chart.XAxis{
			Name:           fmt.Sprintf("Time (%s)", t.loc),
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
		},
		YAxis: chart.YAxis{
			Name: "Count",
			// Padded so a flat series still has a drawable range.
			Range: &chart.ContinuousRange{Min: minV - 1, Max: maxV + 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    m.title,
				XValues: xs,
				YValues: values,
				Style: chart.Style{
					StrokeColor: m.color,
					DotColor:    m.color,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}
