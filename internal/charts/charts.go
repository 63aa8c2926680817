package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/mana-tomb/internal/composition"
)

// ColorPalette maps each color key to its chart color.
var ColorPalette = map[string]string{
	composition.ColorWhite:     "#f8e7b9",
	composition.ColorBlue:      "#b3ceea",
	composition.ColorBlack:     "#a69f9d",
	composition.ColorRed:       "#eb9f82",
	composition.ColorGreen:     "#c4d3ca",
	composition.ColorColorless: "#DCDCDC",
}

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	YAxisLabel string // Y-axis label
	XAxisLabel string // X-axis label
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string // Chart theme
	ShowLegend bool   // Show legend
	BarColor   string // Mana curve bar color
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "600px",
		Height:     "400px",
		Theme:      "light",
		ShowLegend: true,
		BarColor:   "#5470C6",
	}
}

// ManaCurveChart builds the mana curve bar chart.
func ManaCurveChart(curve [composition.CurveBuckets]composition.ManaCurveBucket, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()

	title := config.Title
	if title == "" {
		title = "Mana Curve"
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:        config.YAxisLabel,
			MinInterval: 1,
		}),
		charts.WithColorsOpts(opts.Colors{
			config.BarColor,
		}),
	)

	xLabels := make([]string, len(curve))
	yData := make([]opts.BarData, len(curve))
	for i, bucket := range curve {
		xLabels[i] = bucket.Label
		yData[i] = opts.BarData{Name: bucket.Label, Value: bucket.Count}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	return bar
}

// ColorDistributionChart builds the color distribution pie chart. Slices
// with a color outside the palette are drawn in the theme's default color.
func ColorDistributionChart(slices []composition.ColorSlice, config ChartConfig) *charts.Pie {
	pie := charts.NewPie()

	title := config.Title
	if title == "" {
		title = "Color Distribution"
	}

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	data := make([]opts.PieData, 0, len(slices))
	for _, slice := range slices {
		item := opts.PieData{Name: slice.Color, Value: slice.Count}
		if color, ok := ColorPalette[slice.Color]; ok {
			item.ItemStyle = &opts.ItemStyle{Color: color}
		}
		data = append(data, item)
	}

	pie.AddSeries("Colors", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"35%", "65%"},
			}),
		)

	return pie
}

// RenderManaCurve writes the mana curve bar chart as HTML.
func RenderManaCurve(w io.Writer, curve [composition.CurveBuckets]composition.ManaCurveBucket, config ChartConfig) error {
	if err := ManaCurveChart(curve, config).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderColorDistribution writes the color distribution pie chart as HTML.
func RenderColorDistribution(w io.Writer, slices []composition.ColorSlice, config ChartConfig) error {
	if err := ColorDistributionChart(slices, config).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderDeckStats writes both charts for a composition onto one HTML page.
func RenderDeckStats(w io.Writer, deckName string, comp composition.Composition, config ChartConfig) error {
	curveConfig := config
	curveConfig.Title = ""
	curveConfig.XAxisLabel = "Mana value"
	curveConfig.YAxisLabel = "Cards"

	colorConfig := config
	colorConfig.Title = ""

	page := components.NewPage()
	page.SetPageTitle(pageTitle(deckName))
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		ManaCurveChart(comp.ManaCurve, curveConfig),
		ColorDistributionChart(comp.ColorDistribution, colorConfig),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render deck stats page: %w", err)
	}
	return nil
}

func pageTitle(deckName string) string {
	if deckName == "" {
		return "Deck Statistics"
	}
	return deckName + " - Deck Statistics"
}
