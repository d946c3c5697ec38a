package bodymetrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/2beens/gymplan/internal/gymstats/normalize"

	"github.com/fogleman/gg"
)

var ErrNotEnoughData = errors.New("not enough data for a chart")

const (
	SeriesWeight     = "Peso"
	SeriesMuscleMass = "Massa Muscular"

	colorWeight     = "#FF4B4B"
	colorMuscleMass = "#1C83E1"
	colorAxis       = "#31333F"
	colorGrid       = "#E6E6E6"
)

type SeriesPoint struct {
	Date  normalize.Date
	Value float64
}

// Series is a line split into segments: a missing value ends the current
// segment, so the chart shows a gap instead of a drop to zero.
type Series struct {
	Name     string
	Color    string
	Segments [][]SeriesPoint
}

func (s Series) Len() int {
	n := 0
	for _, seg := range s.Segments {
		n += len(seg)
	}
	return n
}

type Chart struct {
	Points []Point
	Series []Series
}

// BuildChart turns a history into the weight and muscle mass series.
func BuildChart(history History) (*Chart, error) {
	if history.Empty() || !history.HasWeight() {
		return nil, ErrNotEnoughData
	}
	return &Chart{
		Points: history.Points,
		Series: []Series{
			buildSeries(SeriesWeight, colorWeight, history.Points, func(p Point) normalize.Float { return p.Weight }),
			buildSeries(SeriesMuscleMass, colorMuscleMass, history.Points, func(p Point) normalize.Float { return p.MuscleMass }),
		},
	}, nil
}

func buildSeries(name, color string, points []Point, value func(Point) normalize.Float) Series {
	series := Series{Name: name, Color: color}
	var segment []SeriesPoint
	for _, p := range points {
		v := value(p)
		if !v.Valid {
			if len(segment) > 0 {
				series.Segments = append(series.Segments, segment)
				segment = nil
			}
			continue
		}
		segment = append(segment, SeriesPoint{Date: p.Date, Value: v.Value})
	}
	if len(segment) > 0 {
		series.Segments = append(series.Segments, segment)
	}
	return series
}

// DateRange returns the first and last date of the chart.
func (c *Chart) DateRange() (normalize.Date, normalize.Date) {
	return c.Points[0].Date, c.Points[len(c.Points)-1].Date
}

// ValueRange returns the min and max over every plotted value.
func (c *Chart) ValueRange() (float64, float64) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, seg := range s.Segments {
			for _, p := range seg {
				minV = math.Min(minV, p.Value)
				maxV = math.Max(maxV, p.Value)
			}
		}
	}
	return minV, maxV
}

type RenderOptions struct {
	Width  int
	Height int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 800, Height: 400}
}

const (
	marginLeft   = 60.0
	marginRight  = 20.0
	marginTop    = 40.0
	marginBottom = 40.0
	yTicks       = 5
)

// RenderPNG draws the chart as a line chart with a date x axis.
func RenderPNG(chart *Chart, w io.Writer, opts RenderOptions) error {
	if chart == nil || len(chart.Points) == 0 {
		return ErrNotEnoughData
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultRenderOptions()
	}

	width, height := float64(opts.Width), float64(opts.Height)
	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom
	if plotW <= 0 || plotH <= 0 {
		return fmt.Errorf("chart size %dx%d too small", opts.Width, opts.Height)
	}

	first, last := chart.DateRange()
	spanDays := last.Time().Sub(first.Time()).Hours() / 24
	x := func(d normalize.Date) float64 {
		if spanDays == 0 {
			return marginLeft + plotW/2
		}
		return marginLeft + plotW*(d.Time().Sub(first.Time()).Hours()/24)/spanDays
	}

	minV, maxV := chart.ValueRange()
	if math.IsInf(minV, 0) {
		return ErrNotEnoughData
	}
	if pad := (maxV - minV) * 0.05; pad < 1 {
		minV, maxV = minV-1, maxV+1
	} else {
		minV, maxV = minV-pad, maxV+pad
	}
	y := func(v float64) float64 {
		return marginTop + plotH*(maxV-v)/(maxV-minV)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	// grid and y labels
	dc.SetLineWidth(1)
	for i := 0; i <= yTicks; i++ {
		v := minV + (maxV-minV)*float64(i)/yTicks
		ty := y(v)
		dc.SetHexColor(colorGrid)
		dc.DrawLine(marginLeft, ty, marginLeft+plotW, ty)
		dc.Stroke()
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(strconv.FormatFloat(v, 'f', 1, 64), marginLeft-6, ty, 1, 0.5)
	}

	// axes
	dc.SetHexColor(colorAxis)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	for _, d := range dateLabels(first, last) {
		dc.DrawStringAnchored(d.String(), x(d), marginTop+plotH+16, 0.5, 0.5)
	}

	for _, s := range chart.Series {
		dc.SetHexColor(s.Color)
		dc.SetLineWidth(2)
		for _, seg := range s.Segments {
			dc.MoveTo(x(seg[0].Date), y(seg[0].Value))
			for _, p := range seg[1:] {
				dc.LineTo(x(p.Date), y(p.Value))
			}
			dc.Stroke()
			for _, p := range seg {
				dc.DrawCircle(x(p.Date), y(p.Value), 3)
				dc.Fill()
			}
		}
	}

	// legend
	legendX := marginLeft
	for _, s := range chart.Series {
		dc.SetHexColor(s.Color)
		dc.DrawRectangle(legendX, 14, 12, 12)
		dc.Fill()
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(s.Name, legendX+18, 20, 0, 0.5)
		tw, _ := dc.MeasureString(s.Name)
		legendX += 18 + tw + 24
	}

	return dc.EncodePNG(w)
}

// dateLabels picks the first, middle and last dates of the range, without
// repeats.
func dateLabels(first, last normalize.Date) []normalize.Date {
	if first == last {
		return []normalize.Date{first}
	}
	mid := normalize.DateOf(first.Time().Add(last.Time().Sub(first.Time()) / 2))
	if mid == first || mid == last {
		return []normalize.Date{first, last}
	}
	return []normalize.Date{first, mid, last}
}
