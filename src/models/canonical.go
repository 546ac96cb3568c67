// src/models/canonical.go
package models

// Payload is the canonical, in-memory form of the analytics data files written by the
// exporter. Each field maps to one of the global variables the dashboard page used to
// receive (breakdown_by_moniker_data, growth_data, summary_data, ...).
type Payload struct {
	BreakdownByMoniker   []BreakdownPoint `json:"breakdown_by_moniker_data"`
	BreakdownByStockType []BreakdownPoint `json:"breakdown_by_stock_type_data"`
	BreakdownBySector    []BreakdownPoint `json:"breakdown_by_sector_data"`

	GrowthBreakdown    GrowthBreakdown `json:"growth_breakdown_by_stock_type_data"`     // cumulative profit ratio per moniker
	GrowthBreakdownMoM GrowthBreakdown `json:"growth_breakdown_mom_by_stock_type_data"` // month-over-month price ratio per moniker

	Growth []GrowthPoint `json:"growth_data"`

	Summary   SummaryRecord `json:"summary_data"`
	Portfolio []StockRow    `json:"portfolio_data"`
}

// Stock types used as keys of a GrowthBreakdown.
const (
	StockTypeEquity = "EQUITY"
	StockTypeETF    = "ETF"
)

// LabelField selects which attribute of a BreakdownPoint labels a pie slice.
type LabelField string

const (
	LabelMoniker   LabelField = "moniker"
	LabelStockType LabelField = "stock_type"
	LabelSector    LabelField = "sector"
)

// BreakdownPoint is a labeled share of the portfolio value. Only the attribute matching
// the breakdown being rendered is populated by the exporter.
type BreakdownPoint struct {
	Moniker   string  `json:"moniker,omitempty"`
	StockType string  `json:"stock_type,omitempty"`
	Sector    string  `json:"sector,omitempty"`
	Percent   float64 `json:"percent"` // fraction in [0,1]
}

// Label returns the category for the given label field.
func (p BreakdownPoint) Label(field LabelField) string {
	switch field {
	case LabelStockType:
		return p.StockType
	case LabelSector:
		return p.Sector
	default:
		return p.Moniker
	}
}

// GrowthPoint is one month of the aggregated portfolio growth series.
type GrowthPoint struct {
	Month                 string  `json:"month"`
	Invested              float64 `json:"invested"`
	Value                 float64 `json:"value"`
	Profit                float64 `json:"profit"`
	ProfitRatio           float64 `json:"profit_ratio"`
	ProfitRatioDifference float64 `json:"profit_ratio_difference"` // null for the first month, decoded as 0
}

// Viewport carries the page's breakpoint flags. They only decide legend placement.
type Viewport struct {
	IsLarge  bool `json:"is_large"`
	IsXLarge bool `json:"is_xlarge"`
}

// ParseViewport maps a breakpoint name ("lg", "xl") to viewport flags.
// Anything else is treated as a small screen.
func ParseViewport(s string) Viewport {
	switch s {
	case "xl", "xlarge":
		return Viewport{IsXLarge: true}
	case "lg", "large":
		return Viewport{IsLarge: true}
	default:
		return Viewport{}
	}
}

// Key identifies the viewport in cache keys.
func (v Viewport) Key() string {
	switch {
	case v.IsXLarge:
		return "xl"
	case v.IsLarge:
		return "lg"
	default:
		return "sm"
	}
}
