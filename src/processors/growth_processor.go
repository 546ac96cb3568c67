// src/processors/growth_processor.go
package processors

import (
	"fmt"
	"strings"

	"github.com/username/pypdash/src/models"
)

// GrowthSeries holds the formatted, parallel sequences derived from the monthly growth
// series, plus the annual aggregation.
type GrowthSeries struct {
	Labels                []string
	Invested              []string
	Value                 []string
	Profit                []string
	ProfitRatio           []string
	ProfitRatioDifference []string
	InvestedRatio         []string
	EarnedRatio           []string
	MonthlyColors         []string

	AnnualLabels []string
	AnnualGrowth []string
	AnnualColors []string
}

// AnnualGrowth is the raw (unscaled) sum of month-over-month profit ratio differences
// for one year segment.
type AnnualGrowth struct {
	Year string
	Sum  float64
}

type growthProcessorImpl struct{}

func NewGrowthProcessor() GrowthProcessor {
	return &growthProcessorImpl{}
}

// Series formats every month and aggregates the annual growth.
func (p *growthProcessorImpl) Series(points []models.GrowthPoint) (GrowthSeries, error) {
	n := len(points)
	s := GrowthSeries{
		Labels:                make([]string, 0, n),
		Invested:              make([]string, 0, n),
		Value:                 make([]string, 0, n),
		Profit:                make([]string, 0, n),
		ProfitRatio:           make([]string, 0, n),
		ProfitRatioDifference: make([]string, 0, n),
		InvestedRatio:         make([]string, 0, n),
		EarnedRatio:           make([]string, 0, n),
		MonthlyColors:         make([]string, 0, n),
	}

	for _, point := range points {
		s.Labels = append(s.Labels, point.Month)
		s.Invested = append(s.Invested, money(point.Invested))
		s.Value = append(s.Value, money(point.Value))
		s.Profit = append(s.Profit, money(point.Profit))
		s.ProfitRatio = append(s.ProfitRatio, percent(point.ProfitRatio))

		difference := point.ProfitRatioDifference * 100
		s.ProfitRatioDifference = append(s.ProfitRatioDifference, toFixed(difference, 2))
		s.MonthlyColors = append(s.MonthlyColors, signColor(difference))

		s.InvestedRatio = append(s.InvestedRatio, toFixed(shareOf(point.Invested, point.Value), 2))
		s.EarnedRatio = append(s.EarnedRatio, toFixed(shareOf(point.Profit, point.Value), 2))
	}

	annual, err := AggregateAnnual(points)
	if err != nil {
		return GrowthSeries{}, err
	}
	s.AnnualLabels = make([]string, 0, len(annual))
	s.AnnualGrowth = make([]string, 0, len(annual))
	s.AnnualColors = make([]string, 0, len(annual))
	for _, year := range annual {
		growth := year.Sum * 100
		s.AnnualLabels = append(s.AnnualLabels, "'"+year.Year)
		s.AnnualGrowth = append(s.AnnualGrowth, toFixed(growth, 2))
		s.AnnualColors = append(s.AnnualColors, signColor(growth))
	}

	return s, nil
}

// AggregateAnnual sums profit_ratio_difference per year segment of the month label,
// in the order years are first seen. Sums stay unscaled.
func AggregateAnnual(points []models.GrowthPoint) ([]AnnualGrowth, error) {
	annual := []AnnualGrowth{}
	index := make(map[string]int)

	for _, point := range points {
		year, err := yearSegment(point.Month)
		if err != nil {
			return nil, err
		}
		i, seen := index[year]
		if !seen {
			i = len(annual)
			index[year] = i
			annual = append(annual, AnnualGrowth{Year: year})
		}
		annual[i].Sum += point.ProfitRatioDifference
	}

	return annual, nil
}

// yearSegment returns the part of "Jan-24" after the first '-'.
func yearSegment(month string) (string, error) {
	parts := strings.Split(month, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedMonth, month)
	}
	return parts[1], nil
}

// Charts builds the five growth charts in page order.
func (p *growthProcessorImpl) Charts(s GrowthSeries, viewport models.Viewport) []models.Chart {
	investedVSMarket := newChartConfig(models.ChartTypeLine, s.Labels, []models.Dataset{
		{Label: "Invested", Data: s.Invested, Fill: models.NoFill()},
		{Label: "Market", Data: s.Value, Fill: models.NoFill()},
	}, models.RightLegend, "Invested vs. Market Value")

	profitGrowth := newChartConfig(models.ChartTypeLine, s.Labels, []models.Dataset{
		{Label: "$", Data: s.Profit, Fill: &models.Fill{Target: "origin", Below: fillBelowOrigin, Above: fillAboveOrigin}},
	}, models.HiddenLegend, "Profit Growth")

	portfolioRatio := newChartConfig(models.ChartTypeBar, s.Labels, []models.Dataset{
		{Label: "Invested", Data: s.InvestedRatio, Fill: models.NoFill()},
		{Label: "Earned", Data: s.EarnedRatio, Fill: models.NoFill()},
	}, models.HiddenLegend, "Portfolio Ratio")
	portfolioRatio.Options.Scales = &models.Scales{X: models.Axis{Stacked: true}, Y: models.Axis{Stacked: true}}

	monthlyGrowth := newChartConfig(models.ChartTypeBar, s.Labels, []models.Dataset{
		{Label: "%", Data: s.ProfitRatioDifference, BackgroundColor: s.MonthlyColors},
	}, models.HiddenLegend, "Monthly Growth")

	annualGrowth := newChartConfig(models.ChartTypeBar, s.AnnualLabels, []models.Dataset{
		{Label: "%", Data: s.AnnualGrowth, BackgroundColor: s.AnnualColors},
	}, models.HiddenLegend, "Annual Growth")

	return []models.Chart{
		{Canvas: models.CanvasInvestedVSMarket, Config: investedVSMarket},
		{Canvas: models.CanvasProfitGrowth, Config: profitGrowth},
		{Canvas: models.CanvasPortfolioRatio, Config: portfolioRatio},
		{Canvas: models.CanvasMonthlyGrowth, Config: monthlyGrowth},
		{Canvas: models.CanvasAnnualGrowth, Config: annualGrowth},
	}
}

// Process formats the growth series and builds its charts.
func (p *growthProcessorImpl) Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error) {
	series, err := p.Series(payload.Growth)
	if err != nil {
		return nil, err
	}
	return p.Charts(series, viewport), nil
}
