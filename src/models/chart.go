package models

import "encoding/json"

// Chart types understood by the charting library.
const (
	ChartTypePie  = "pie"
	ChartTypeLine = "line"
	ChartTypeBar  = "bar"
)

// Canvas element ids, one per chart on the dashboard.
const (
	CanvasBreakdownByMoniker                  = "breakdownByMoniker"
	CanvasBreakdownByStockType                = "breakdownByStockType"
	CanvasBreakdownBySector                   = "breakdownBySector"
	CanvasGrowthBreakdownEquity               = "growthBreakdownEquity"
	CanvasGrowthBreakdownETF                  = "growthBreakdownETF"
	CanvasGrowthBreakdownMonthOverMonthEquity = "growthBreakdownMonthOverMonthEquity"
	CanvasGrowthBreakdownMonthOverMonthETF    = "growthBreakdownMonthOverMonthETF"
	CanvasInvestedVSMarket                    = "investedVSmarket"
	CanvasProfitGrowth                        = "profitGrowth"
	CanvasPortfolioRatio                      = "portfolioRatio"
	CanvasMonthlyGrowth                       = "monthlyGrowth"
	CanvasAnnualGrowth                        = "annualGrowth"
)

// Chart binds a chart configuration to the canvas it is drawn on.
type Chart struct {
	Canvas string      `json:"canvas"`
	Config ChartConfig `json:"config"`
}

// ChartConfig is the declarative configuration handed to the charting library.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset values are pre-formatted fixed-point strings.
type Dataset struct {
	Label           string   `json:"label"`
	Data            []string `json:"data"`
	Fill            *Fill    `json:"fill,omitempty"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
}

type ChartOptions struct {
	Responsive bool    `json:"responsive"`
	Plugins    Plugins `json:"plugins"`
	Scales     *Scales `json:"scales,omitempty"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
	Title  Title  `json:"title"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Legend is either hidden (encoded as false) or shown at a position.
type Legend struct {
	Position string
}

// HiddenLegend is the zero Legend.
var HiddenLegend = Legend{}

// RightLegend places the legend to the right of the chart.
var RightLegend = Legend{Position: "right"}

func (l Legend) MarshalJSON() ([]byte, error) {
	if l.Position == "" {
		return []byte("false"), nil
	}
	return json.Marshal(struct {
		Position string `json:"position"`
	}{l.Position})
}

func (l *Legend) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*l = Legend{}
		return nil
	}
	var v struct {
		Position string `json:"position"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	l.Position = v.Position
	return nil
}

// Fill is either disabled (encoded as false) or an area fill relative to a target.
type Fill struct {
	Target string
	Below  string
	Above  string
}

// NoFill disables area filling for a dataset.
func NoFill() *Fill { return &Fill{} }

func (f Fill) MarshalJSON() ([]byte, error) {
	if f.Target == "" {
		return []byte("false"), nil
	}
	return json.Marshal(struct {
		Target string `json:"target"`
		Below  string `json:"below,omitempty"`
		Above  string `json:"above,omitempty"`
	}{f.Target, f.Below, f.Above})
}

func (f *Fill) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*f = Fill{}
		return nil
	}
	var v struct {
		Target string `json:"target"`
		Below  string `json:"below"`
		Above  string `json:"above"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Fill{Target: v.Target, Below: v.Below, Above: v.Above}
	return nil
}

type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

type Axis struct {
	Stacked bool `json:"stacked"`
}
