// src/processors/interfaces.go
package processors

import (
	"errors"

	"github.com/username/pypdash/src/models"
)

var (
	ErrMissingStockType = errors.New("stock type missing from growth breakdown")
	ErrMalformedMonth   = errors.New("month has no year segment")
)

// BreakdownProcessor turns portfolio share lists and per-moniker growth series into
// pie, line and bar chart configurations.
type BreakdownProcessor interface {
	PieSpec(points []models.BreakdownPoint, labelField models.LabelField, viewport models.Viewport) models.ChartConfig
	LineSpec(breakdown models.GrowthBreakdown, stockType string, viewport models.Viewport) (models.ChartConfig, error)
	BarSpec(breakdown models.GrowthBreakdown, stockType string, viewport models.Viewport) (models.ChartConfig, error)
	Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error)
}

// GrowthProcessor turns the monthly growth series into line and bar chart configurations,
// including the annual aggregation of month-over-month growth.
type GrowthProcessor interface {
	Series(points []models.GrowthPoint) (GrowthSeries, error)
	Charts(series GrowthSeries, viewport models.Viewport) []models.Chart
	Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error)
}

// SummaryRenderer turns the summary record and stock rows into page element contents.
type SummaryRenderer interface {
	Render(summary models.SummaryRecord, rows []models.StockRow) models.SummaryView
}
