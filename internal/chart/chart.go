package chart

import (
	"btc-dca-dashboard/internal/types"
	"btc-dca-dashboard/lib/helpers"
	"bytes"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"sync"
	"time"
)

var ErrNotEnoughData = errors.New("at least two price points are needed to draw a chart")

var (
	backgroundColor = drawing.Color{R: 55, G: 55, B: 55, A: 255}
	textColor       = drawing.Color{R: 200, G: 200, B: 200, A: 255}
	gridColor       = drawing.Color{R: 100, G: 100, B: 100, A: 128}
	lineColor       = drawing.Color{R: 0, G: 122, B: 255, A: 255}
	fillColor       = drawing.Color{R: 0, G: 122, B: 255, A: 25}
)

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func defaultFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = chart.GetDefaultFont()
	})
	return font, fontErr
}

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
}

// RenderPNG draws the ticks as a filled line chart.
func RenderPNG(ticks []types.PriceTick, opts Options) ([]byte, error) {
	if len(ticks) < 2 {
		return nil, ErrNotEnoughData
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 500
	}

	times := make([]time.Time, len(ticks))
	prices := make([]float64, len(ticks))
	for i, t := range ticks {
		times[i] = t.Timestamp
		prices[i] = t.Price
	}

	minPrice, maxPrice := getMinMax(prices)
	padding := (maxPrice - minPrice) * 0.1
	if padding == 0 {
		padding = maxPrice * 0.001
	}

	f, err := defaultFont()
	if err != nil {
		return nil, errors.Wrap(err, "could not load chart font")
	}

	axisStyle := chart.Style{FontColor: textColor, StrokeColor: textColor, FontSize: 10}
	graph := chart.Chart{
		Title:      opts.Title,
		TitleStyle: chart.Style{FontColor: textColor, FontSize: 14},
		Width:      opts.Width,
		Height:     opts.Height,
		Font:       f,
		Background: chart.Style{
			FillColor: backgroundColor,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: backgroundColor},
		XAxis: chart.XAxis{
			Style:          axisStyle,
			ValueFormatter: chart.TimeValueFormatterWithFormat(timeFormat(times)),
		},
		YAxis: chart.YAxis{
			Style: axisStyle,
			Range: &chart.ContinuousRange{Min: minPrice - padding, Max: maxPrice + padding},
			ValueFormatter: func(v interface{}) string {
				if price, ok := v.(float64); ok {
					return helpers.FormatPriceUS(price, false)
				}
				return ""
			},
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				XValues: times,
				YValues: prices,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					FillColor:   fillColor,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "could not render chart")
	}
	return buf.Bytes(), nil
}

func getMinMax(prices []float64) (min, max float64) {
	min, max = prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}

// timeFormat picks the x axis label layout for the covered period.
func timeFormat(times []time.Time) string {
	if times[len(times)-1].Sub(times[0]) > 24*time.Hour {
		return "02-Jan"
	}
	return "15:04"
}
