// src/processors/breakdown_processor.go
package processors

import (
	"fmt"

	"github.com/username/pypdash/src/models"
)

var pieTitles = map[models.LabelField]string{
	models.LabelMoniker:   "Percent of Portfolio by Moniker",
	models.LabelStockType: "Percent of Portfolio by Stock Type",
	models.LabelSector:    "Percent of Portfolio by Sector",
}

var stockTypeNames = map[string]string{
	models.StockTypeEquity: "Equity",
	models.StockTypeETF:    "ETF",
}

type breakdownProcessorImpl struct{}

func NewBreakdownProcessor() BreakdownProcessor {
	return &breakdownProcessorImpl{}
}

// PieSpec builds a pie chart of portfolio shares labeled by labelField.
// The legend is only shown on extra-large screens.
func (p *breakdownProcessorImpl) PieSpec(points []models.BreakdownPoint, labelField models.LabelField, viewport models.Viewport) models.ChartConfig {
	labels := make([]string, 0, len(points))
	values := make([]string, 0, len(points))
	for _, point := range points {
		labels = append(labels, point.Label(labelField))
		values = append(values, percent(point.Percent))
	}

	legend := models.HiddenLegend
	if viewport.IsXLarge {
		legend = models.RightLegend
	}

	return newChartConfig(models.ChartTypePie, labels,
		[]models.Dataset{{Label: "%", Data: values, Fill: models.NoFill()}},
		legend, pieTitles[labelField])
}

// LineSpec builds one line per moniker of the stock type's cumulative growth series.
func (p *breakdownProcessorImpl) LineSpec(breakdown models.GrowthBreakdown, stockType string, viewport models.Viewport) (models.ChartConfig, error) {
	points, ok := breakdown[stockType]
	if !ok {
		return models.ChartConfig{}, fmt.Errorf("%w: %s", ErrMissingStockType, stockType)
	}

	labels, datasets := accumulateSeries(points)
	for i := range datasets {
		datasets[i].Fill = models.NoFill()
	}

	title := fmt.Sprintf("Portfolio Growth(%%) for %s Stock", stockTypeName(stockType))
	return newChartConfig(models.ChartTypeLine, labels, datasets, seriesLegend(viewport), title), nil
}

// BarSpec builds grouped bars per moniker of the stock type's month-over-month series.
func (p *breakdownProcessorImpl) BarSpec(breakdown models.GrowthBreakdown, stockType string, viewport models.Viewport) (models.ChartConfig, error) {
	points, ok := breakdown[stockType]
	if !ok {
		return models.ChartConfig{}, fmt.Errorf("%w: %s", ErrMissingStockType, stockType)
	}

	labels, datasets := accumulateSeries(points)

	title := fmt.Sprintf("Market Growth(%%) for %s Stock", stockTypeName(stockType))
	return newChartConfig(models.ChartTypeBar, labels, datasets, seriesLegend(viewport), title), nil
}

// Process builds the seven breakdown charts in page order.
func (p *breakdownProcessorImpl) Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error) {
	charts := []models.Chart{
		{Canvas: models.CanvasBreakdownByMoniker, Config: p.PieSpec(payload.BreakdownByMoniker, models.LabelMoniker, viewport)},
		{Canvas: models.CanvasBreakdownByStockType, Config: p.PieSpec(payload.BreakdownByStockType, models.LabelStockType, viewport)},
		{Canvas: models.CanvasBreakdownBySector, Config: p.PieSpec(payload.BreakdownBySector, models.LabelSector, viewport)},
	}

	series := []struct {
		canvas    string
		stockType string
		build     func(models.GrowthBreakdown, string, models.Viewport) (models.ChartConfig, error)
		breakdown models.GrowthBreakdown
	}{
		{models.CanvasGrowthBreakdownEquity, models.StockTypeEquity, p.LineSpec, payload.GrowthBreakdown},
		{models.CanvasGrowthBreakdownETF, models.StockTypeETF, p.LineSpec, payload.GrowthBreakdown},
		{models.CanvasGrowthBreakdownMonthOverMonthEquity, models.StockTypeEquity, p.BarSpec, payload.GrowthBreakdownMoM},
		{models.CanvasGrowthBreakdownMonthOverMonthETF, models.StockTypeETF, p.BarSpec, payload.GrowthBreakdownMoM},
	}
	for _, s := range series {
		config, err := s.build(s.breakdown, s.stockType, viewport)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.canvas, err)
		}
		charts = append(charts, models.Chart{Canvas: s.canvas, Config: config})
	}

	return charts, nil
}

// accumulateSeries emits one label per point and one dataset per category, in the order
// categories are first seen. A point missing a category does not extend its dataset.
func accumulateSeries(points []models.MonthlySeriesPoint) ([]string, []models.Dataset) {
	labels := make([]string, 0, len(points))
	datasets := []models.Dataset{}
	index := make(map[string]int)

	for _, point := range points {
		labels = append(labels, point.Month)
		for _, v := range point.Values {
			i, seen := index[v.Category]
			if !seen {
				i = len(datasets)
				index[v.Category] = i
				datasets = append(datasets, models.Dataset{Label: v.Category, Data: []string{}})
			}
			datasets[i].Data = append(datasets[i].Data, percent(v.Value))
		}
	}

	return labels, datasets
}

// seriesLegend shows the moniker legend on large and extra-large screens.
func seriesLegend(viewport models.Viewport) models.Legend {
	if viewport.IsLarge || viewport.IsXLarge {
		return models.RightLegend
	}
	return models.HiddenLegend
}

func stockTypeName(stockType string) string {
	if name, ok := stockTypeNames[stockType]; ok {
		return name
	}
	return stockType
}

func newChartConfig(chartType string, labels []string, datasets []models.Dataset, legend models.Legend, title string) models.ChartConfig {
	return models.ChartConfig{
		Type: chartType,
		Data: models.ChartData{
			Labels:   labels,
			Datasets: datasets,
		},
		Options: models.ChartOptions{
			Responsive: true,
			Plugins: models.Plugins{
				Legend: legend,
				Title:  models.Title{Display: true, Text: title},
			},
		},
	}
}
