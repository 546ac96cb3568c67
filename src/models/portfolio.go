package models

// SummaryRecord holds the scalar figures shown at the top of the summary view.
type SummaryRecord struct {
	Date      string  `json:"date"`
	Username  string  `json:"username"`
	Portfolio string  `json:"portfolio"`
	Currency  string  `json:"currency"`
	Invested  float64 `json:"invested"` // total invested, already rounded by the exporter
	Value     float64 `json:"value"`    // current market value
	Percent   float64 `json:"percent"`  // change in percent, already scaled to [-100, ...]
	Equities  int     `json:"equities"`
	ETFs      int     `json:"etfs"`
}

// StockRow is one position of the portfolio as listed in the holdings tables.
type StockRow struct {
	Moniker      string  `json:"moniker"`
	StockType    string  `json:"stock_type,omitempty"`
	Invested     float64 `json:"invested"`
	Value        float64 `json:"value"`
	AveragePrice float64 `json:"average_price"`
	MarketPrice  float64 `json:"market_price"`
	Amount       float64 `json:"amount"` // number of shares
}

// SummaryView is the rendered summary: one field per page element, keyed by the
// element id it is written to.
type SummaryView struct {
	Date             string           `json:"date"`
	Username         string           `json:"username"`
	Portfolio        string           `json:"portfolio"`
	Currency         string           `json:"currency"`
	InvestedValue    string           `json:"investedValue"`
	CurrentValue     string           `json:"currentValue"`
	NumberOfEquities string           `json:"numberOfEquities"`
	NumberOfETFs     string           `json:"numberOfETFs"`
	CurrentPercent   PercentIndicator `json:"currentPercent"`
	PortfolioData    string           `json:"portfolioData"`
	SharesData       string           `json:"sharesData"`
}

// PercentIndicator is the arrow icon plus percent text and the class added to its element.
type PercentIndicator struct {
	HTML  string `json:"html"`
	Class string `json:"class"`
}

// ElementUpdate is a single DOM write: set the element's content and optionally add a class.
type ElementUpdate struct {
	ID    string `json:"id"`
	HTML  string `json:"html"`
	Class string `json:"class,omitempty"`
}

// Elements flattens the view into DOM updates in page order.
func (v SummaryView) Elements() []ElementUpdate {
	return []ElementUpdate{
		{ID: "date", HTML: v.Date},
		{ID: "username", HTML: v.Username},
		{ID: "portfolio", HTML: v.Portfolio},
		{ID: "currency", HTML: v.Currency},
		{ID: "investedValue", HTML: v.InvestedValue},
		{ID: "currentValue", HTML: v.CurrentValue},
		{ID: "numberOfEquities", HTML: v.NumberOfEquities},
		{ID: "numberOfETFs", HTML: v.NumberOfETFs},
		{ID: "currentPercent", HTML: v.CurrentPercent.HTML, Class: v.CurrentPercent.Class},
		{ID: "portfolioData", HTML: v.PortfolioData},
		{ID: "sharesData", HTML: v.SharesData},
	}
}
