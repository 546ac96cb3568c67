// src/processors/summary_renderer.go
package processors

import (
	"strconv"
	"strings"

	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/security/validation"
)

const (
	classSuccess = "text-success"
	classDanger  = "text-danger"

	iconArrowUp   = `<i class="bi-arrow-up-short"></i>`
	iconArrowDown = `<i class="bi-arrow-down-short"></i>`
)

type summaryRendererImpl struct{}

func NewSummaryRenderer() SummaryRenderer {
	return &summaryRendererImpl{}
}

// Render fills the summary elements and builds both holdings tables. Rows keep input order.
func (r *summaryRendererImpl) Render(summary models.SummaryRecord, rows []models.StockRow) models.SummaryView {
	return models.SummaryView{
		Date:             validation.EscapeText(summary.Date),
		Username:         validation.EscapeText(summary.Username),
		Portfolio:        validation.EscapeText(summary.Portfolio),
		Currency:         validation.EscapeText(summary.Currency),
		InvestedValue:    "$" + plainNumber(summary.Invested),
		CurrentValue:     "$" + plainNumber(summary.Value),
		NumberOfEquities: strconv.Itoa(summary.Equities),
		NumberOfETFs:     strconv.Itoa(summary.ETFs),
		CurrentPercent:   percentIndicator(summary.Percent),
		PortfolioData:    portfolioTable(rows),
		SharesData:       sharesTable(rows),
	}
}

// percentIndicator points up only for a strictly positive change; zero is shown as a loss.
func percentIndicator(change float64) models.PercentIndicator {
	if change > 0 {
		return models.PercentIndicator{
			HTML:  iconArrowUp + plainNumber(change) + "%",
			Class: classSuccess,
		}
	}
	return models.PercentIndicator{
		HTML:  iconArrowDown + plainNumber(change) + "%",
		Class: classDanger,
	}
}

// compareClass colors current against reference: green above, red below, none when equal.
func compareClass(current, reference float64) string {
	switch {
	case current > reference:
		return classSuccess
	case current < reference:
		return classDanger
	default:
		return ""
	}
}

func portfolioTable(rows []models.StockRow) string {
	var sb strings.Builder
	for _, stock := range rows {
		sb.WriteString(`<tr>`)
		sb.WriteString(`<td class="col-3 text-center">` + validation.EscapeText(stock.Moniker) + `</td>`)
		sb.WriteString(`<td class="col-2 text-end">$` + money(stock.Invested) + `</td>`)
		sb.WriteString(`<td class="col-2 text-end ` + compareClass(stock.Value, stock.Invested) + `">$` + money(stock.Value) + `</td></tr>`)
	}
	return sb.String()
}

func sharesTable(rows []models.StockRow) string {
	var sb strings.Builder
	for _, stock := range rows {
		sb.WriteString(`<tr>`)
		sb.WriteString(`<td class="col-3 text-center">` + validation.EscapeText(stock.Moniker) + `</td>`)
		sb.WriteString(`<td class="col-1 text-end">` + toFixed(stock.Amount, 3) + `</td>`)
		sb.WriteString(`<td class="col-2 text-end">$` + money(stock.AveragePrice) + `</td>`)
		sb.WriteString(`<td class="col-2 text-end ` + compareClass(stock.MarketPrice, stock.AveragePrice) + `">$` + money(stock.MarketPrice) + `</td></tr>`)
	}
	return sb.String()
}
