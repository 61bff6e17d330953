package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"wallet-credit-lab/internal/metrics"
)

// Image defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 480
	minSide       = 80
	dpi           = 72 // one point per pixel
	densityPoints = 200
)

// Chart text.
const (
	Title  = "Distribution of Wallet Credit Scores"
	XLabel = "Score"
	YLabel = "Number of Wallets"
)

var (
	barFill      = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	densityColor = color.RGBA{R: 30, G: 60, B: 90, A: 255}
)

// ErrImageTooSmall is returned when the canvas cannot hold the plot area.
var ErrImageTooSmall = errors.New("image too small for plot area")

// RenderPNG draws h with a density overlay and encodes it as a width×height PNG.
func RenderPNG(w io.Writer, h Histogram, width, height int) error {
	if width < minSide || height < minSide {
		return ErrImageTooSmall
	}

	p, err := newHistogramPlot(h)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(vg.Length(width), vg.Length(height)), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// newHistogramPlot builds the titled, gridded chart. An empty histogram gives
// bare axes.
func newHistogramPlot(h Histogram) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Add(plotter.NewGrid())

	if h.Total == 0 || len(h.Bins) == 0 {
		return p, nil
	}

	bins := plotBins(h)
	bars := &plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: barFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(bars)

	line, err := densityLine(h)
	if err != nil {
		return nil, err
	}
	if line != nil {
		p.Add(line)
	}
	return p, nil
}

// plotBins converts h's bins. A constant sample becomes one unit-wide bar
// centered on the value.
func plotBins(h Histogram) []plotter.HistogramBin {
	if h.Max == h.Min {
		return []plotter.HistogramBin{{Min: h.Min - 0.5, Max: h.Min + 0.5, Weight: float64(h.Total)}}
	}

	out := make([]plotter.HistogramBin, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = plotter.HistogramBin{Min: b.Lower, Max: b.Upper, Weight: float64(b.Count)}
	}
	return out
}

// densityLine is a Gaussian kernel density estimate (Scott's bandwidth) over
// [Min, Max], scaled to bar counts. Nil when the sample has no spread.
func densityLine(h Histogram) (*plotter.Line, error) {
	n := len(h.sample)
	if n < 2 || h.Max == h.Min {
		return nil, nil
	}
	std := metrics.Describe(h.sample).Stddev
	if std == 0 {
		return nil, nil
	}

	bandwidth := std * math.Pow(float64(n), -0.2)
	binWidth := (h.Max - h.Min) / float64(len(h.Bins))
	norm := binWidth / (bandwidth * math.Sqrt(2*math.Pi))

	pts := make(plotter.XYs, densityPoints)
	for i := range pts {
		x := h.Min + (h.Max-h.Min)*float64(i)/float64(densityPoints-1)
		sum := 0.0
		for _, v := range h.sample {
			z := (x - v) / bandwidth
			sum += math.Exp(-0.5 * z * z)
		}
		pts[i].X = x
		pts[i].Y = sum * norm
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("density line: %w", err)
	}
	line.Color = densityColor
	line.Width = vg.Points(2)
	return line, nil
}
