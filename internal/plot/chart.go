// Package plot renders a comparison as two stacked panels: a line chart of
// both series over a bar chart of the signed difference.
package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"settlement-compare/internal/model"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const XLabel = "Settlement Period (1 → 48)"

// ChartSpec holds titles, labels and colours for one chart.
type ChartSpec struct {
	Title      string
	Annotation string // extra title line, e.g. last update / next refresh
	YLabel     string
	LabelA     string
	LabelB     string
	ColorA     color.Color
	ColorB     color.Color
	DiffTitle  string
	DiffYLabel string
	Width      vg.Length
	Height     vg.Length
}

var palette = map[string]color.Color{
	"blue":   color.RGBA{R: 31, G: 119, B: 180, A: 255},
	"red":    color.RGBA{R: 214, G: 39, B: 40, A: 255},
	"green":  color.RGBA{R: 44, G: 160, B: 44, A: 255},
	"cyan":   color.RGBA{R: 23, G: 190, B: 207, A: 255},
	"orange": color.RGBA{R: 255, G: 127, B: 14, A: 255},
	"gray":   color.RGBA{R: 127, G: 127, B: 127, A: 255},
	"black":  color.Black,
}

// ParseColor maps a colour name to a colour; unknown names are gray.
func ParseColor(name string) color.Color {
	if c, ok := palette[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return palette["gray"]
}

func labelColor(l model.SignLabel) color.Color {
	if l == model.SignGreen {
		return palette["green"]
	}
	return palette["red"]
}

// ImbalanceSpec builds the live imbalance chart spec.
func ImbalanceSpec(c *model.Comparison, refColor, todayColor string, updated, next time.Time) ChartSpec {
	return ChartSpec{
		Title: "Imbalance — comparison with reference day",
		Annotation: fmt.Sprintf("Last update: %s   Next refresh: %s",
			updated.UTC().Format("15:04:05 UTC"), next.UTC().Format("15:04 UTC")),
		YLabel:     "Imbalance",
		LabelA:     c.LabelA,
		LabelB:     c.LabelB,
		ColorA:     ParseColor(refColor),
		ColorB:     ParseColor(todayColor),
		DiffYLabel: "Delta vs Reference",
	}
}

// GenerationSpec builds a forecast-vs-actual chart spec. The title carries the
// display timezone abbreviation in effect on the settlement date.
func GenerationSpec(c *model.Comparison, loc *time.Location, forecastColor, actualColor string) ChartSpec {
	zone := "UTC"
	if d, err := model.ParseDate(c.DateB); err == nil && loc != nil {
		zone, _ = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc).Zone()
	}
	return ChartSpec{
		Title:      fmt.Sprintf("%s Generation — Forecast vs Actual — %s (%s)", strings.ToUpper(c.Name), c.DateB, zone),
		YLabel:     "Generation (MW)",
		LabelA:     c.LabelA,
		LabelB:     c.LabelB,
		ColorA:     ParseColor(forecastColor),
		ColorB:     ParseColor(actualColor),
		DiffTitle:  "Difference (Actual - Forecast)",
		DiffYLabel: "Difference (MW)",
	}
}

// Render draws the chart and returns PNG bytes.
func Render(c *model.Comparison, spec ChartSpec) ([]byte, error) {
	if spec.Width == 0 {
		spec.Width = 14 * vg.Inch
	}
	if spec.Height == 0 {
		spec.Height = 8 * vg.Inch
	}

	upper, err := linePanel(c, spec)
	if err != nil {
		return nil, err
	}
	lower, err := diffPanel(c, spec)
	if err != nil {
		return nil, err
	}

	img := vgimg.New(spec.Width, spec.Height)
	split := spec.Height / 4
	upper.Draw(draw.Canvas{
		Canvas:    img,
		Rectangle: vg.Rectangle{Min: vg.Point{X: 0, Y: split}, Max: vg.Point{X: spec.Width, Y: spec.Height}},
	})
	lower.Draw(draw.Canvas{
		Canvas:    img,
		Rectangle: vg.Rectangle{Min: vg.Point{X: 0, Y: 0}, Max: vg.Point{X: spec.Width, Y: split}},
	})

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG renders the chart to path, overwriting it.
func WritePNG(path string, c *model.Comparison, spec ChartSpec) ([]byte, error) {
	png, err := Render(c, spec)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return png, os.WriteFile(path, png, 0o644)
}

func linePanel(c *model.Comparison, spec ChartSpec) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = spec.Title
	if spec.Annotation != "" {
		p.Title.Text += "\n" + spec.Annotation
	}
	p.Y.Label.Text = spec.YLabel
	p.X.Min = float64(model.FirstPeriod) - 0.5
	p.X.Max = float64(model.LastPeriod) + 0.5
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if len(c.Rows) == 0 {
		return p, nil
	}

	a := make(plotter.XYs, len(c.Rows))
	b := make(plotter.XYs, len(c.Rows))
	for i, r := range c.Rows {
		a[i] = plotter.XY{X: float64(r.Period), Y: r.A}
		b[i] = plotter.XY{X: float64(r.Period), Y: r.B}
	}
	for _, s := range []struct {
		xys   plotter.XYs
		label string
		col   color.Color
	}{
		{a, spec.LabelA, spec.ColorA},
		{b, spec.LabelB, spec.ColorB},
	} {
		line, points, err := plotter.NewLinePoints(s.xys)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", s.label, err)
		}
		line.Color = s.col
		line.Width = vg.Points(1.5)
		points.Color = s.col
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2.5)
		p.Add(line, points)
		p.Legend.Add(s.label, line, points)
	}
	return p, nil
}

func diffPanel(c *model.Comparison, spec ChartSpec) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = spec.DiffTitle
	p.X.Label.Text = XLabel
	p.Y.Label.Text = spec.DiffYLabel
	p.X.Min = float64(model.FirstPeriod) - 0.5
	p.X.Max = float64(model.LastPeriod) + 0.5
	p.Add(plotter.NewGrid())

	if len(c.Rows) == 0 {
		return p, nil
	}

	// One bar chart per label so each bar keeps its sign colour. Bars sit at
	// XMin+i, so both cover every period and absent periods stay at zero.
	width := (spec.Width - vg.Points(80)) / vg.Length(model.PeriodsPerDay) * 0.8
	for _, label := range []model.SignLabel{model.SignGreen, model.SignRed} {
		vals := make(plotter.Values, model.PeriodsPerDay)
		for _, r := range c.Rows {
			if r.Label == label && r.Period.Valid() {
				vals[int(r.Period)-1] = r.Difference
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return nil, fmt.Errorf("difference bars: %w", err)
		}
		bars.XMin = float64(model.FirstPeriod)
		bars.Color = labelColor(label)
		bars.LineStyle.Width = 0
		p.Add(bars)
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = color.Black
	zero.Width = vg.Points(0.8)
	p.Add(zero)
	return p, nil
}
