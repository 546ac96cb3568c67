package validation

import (
	"fmt"
	"sort"

	"github.com/username/pypdash/src/models"
)

// ValidatePayload checks a decoded payload before anything is rendered. It stops at the
// first problem: a malformed payload never renders partially.
func ValidatePayload(p *models.Payload) error {
	if p == nil {
		return fmt.Errorf("%w: payload is nil", ErrValidationFailed)
	}

	breakdowns := []struct {
		name   string
		field  models.LabelField
		points []models.BreakdownPoint
	}{
		{"breakdown_by_moniker_data", models.LabelMoniker, p.BreakdownByMoniker},
		{"breakdown_by_stock_type_data", models.LabelStockType, p.BreakdownByStockType},
		{"breakdown_by_sector_data", models.LabelSector, p.BreakdownBySector},
	}
	for _, b := range breakdowns {
		if err := validateBreakdown(b.name, b.field, b.points); err != nil {
			return err
		}
	}

	if err := validateGrowthBreakdown("growth_breakdown_by_stock_type_data", p.GrowthBreakdown); err != nil {
		return err
	}
	if err := validateGrowthBreakdown("growth_breakdown_mom_by_stock_type_data", p.GrowthBreakdownMoM); err != nil {
		return err
	}

	for i, g := range p.Growth {
		field := fmt.Sprintf("growth_data[%d]", i)
		if err := ValidateMonth(g.Month, field+".month"); err != nil {
			return err
		}
		if err := validateFiniteFields(field, []namedValue{
			{"invested", g.Invested},
			{"value", g.Value},
			{"profit", g.Profit},
			{"profit_ratio", g.ProfitRatio},
			{"profit_ratio_difference", g.ProfitRatioDifference},
		}); err != nil {
			return err
		}
	}

	s := p.Summary
	if err := validateFiniteFields("summary_data", []namedValue{
		{"invested", s.Invested},
		{"value", s.Value},
		{"percent", s.Percent},
	}); err != nil {
		return err
	}

	for i, row := range p.Portfolio {
		field := fmt.Sprintf("portfolio_data[%d]", i)
		if err := ValidateStringNotEmpty(row.Moniker, field+".moniker"); err != nil {
			return err
		}
		if err := ValidateStringMaxLength(row.Moniker, MaxMonikerLength, field+".moniker"); err != nil {
			return err
		}
		if err := validateFiniteFields(field, []namedValue{
			{"invested", row.Invested},
			{"value", row.Value},
			{"average_price", row.AveragePrice},
			{"market_price", row.MarketPrice},
			{"amount", row.Amount},
		}); err != nil {
			return err
		}
	}

	return nil
}

func validateBreakdown(name string, labelField models.LabelField, points []models.BreakdownPoint) error {
	for i, point := range points {
		field := fmt.Sprintf("%s[%d]", name, i)
		if err := ValidateStringNotEmpty(point.Label(labelField), field+"."+string(labelField)); err != nil {
			return err
		}
		if err := ValidateFraction(point.Percent, field+".percent"); err != nil {
			return err
		}
	}
	return nil
}

// requiredStockTypes are the series every growth breakdown must carry, possibly empty.
var requiredStockTypes = []string{models.StockTypeEquity, models.StockTypeETF}

func validateGrowthBreakdown(name string, breakdown models.GrowthBreakdown) error {
	for _, stockType := range requiredStockTypes {
		if _, ok := breakdown[stockType]; !ok {
			return fmt.Errorf("%w: %s.%s is missing", ErrValidationFailed, name, stockType)
		}
	}
	for _, stockType := range sortedKeys(breakdown) {
		points := breakdown[stockType]
		for i, point := range points {
			field := fmt.Sprintf("%s.%s[%d]", name, stockType, i)
			if err := ValidateStringNotEmpty(point.Month, field+".month"); err != nil {
				return err
			}
			for _, v := range point.Values {
				if err := ValidateFinite(v.Value, field+"."+v.Category); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type namedValue struct {
	name  string
	value float64
}

// validateFiniteFields checks values in order and reports the first non-finite one.
func validateFiniteFields(prefix string, values []namedValue) error {
	for _, v := range values {
		if err := ValidateFinite(v.value, prefix+"."+v.name); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(breakdown models.GrowthBreakdown) []string {
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
