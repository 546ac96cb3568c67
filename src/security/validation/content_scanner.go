// src/security/validation/content_scanner.go
package validation

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/username/pypdash/src/logger"
)

var (
	// Common XSS vectors. Escaping on output is the primary defense.
	xssPatternsRegex = regexp.MustCompile(
		`(?i)<script|onerror=|onmouseover=|onfocus=|onload=|javascript:|vbscript:|livescript:|mocha:|<iframe|<object|<embed|<applet|<style|<link|<img\s+src\s*=\s*['"]?\s*(javascript|data):`,
	)
)

func truncateForLog(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// CheckXSSPatterns detects basic XSS patterns.
func CheckXSSPatterns(s, fieldName, contextID string) error {
	if xssPatternsRegex.MatchString(s) {
		errMsg := fmt.Sprintf("potential XSS pattern detected in field '%s'", fieldName)
		logger.L.Warn(errMsg, "contextID", contextID, "contentPreview", truncateForLog(s, 50))
		return fmt.Errorf("%w: %s", ErrValidationFailed, errMsg)
	}
	return nil
}

// CheckMarkup flags text that the strict HTML policy would alter.
func CheckMarkup(s, fieldName, contextID string) error {
	if ContainsMarkup(s) {
		errMsg := fmt.Sprintf("markup detected in field '%s'", fieldName)
		logger.L.Warn(errMsg, "contextID", contextID, "contentPreview", truncateForLog(s, 50))
		return fmt.Errorf("%w: %s", ErrValidationFailed, errMsg)
	}
	return nil
}

// ScanPayloadText runs CheckXSSPatterns and CheckMarkup over every text field that ends
// up in an HTML fragment and returns the names of the flagged fields, summary fields in
// name order, then monikers. Flagged text is still rendered (escaped); the scan only reports.
func ScanPayloadText(summaryFields map[string]string, monikers []string, contextID string) []string {
	var flagged []string
	check := func(value, name string) {
		if CheckXSSPatterns(value, name, contextID) != nil || CheckMarkup(value, name, contextID) != nil {
			flagged = append(flagged, name)
		}
	}

	names := make([]string, 0, len(summaryFields))
	for name := range summaryFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check(summaryFields[name], name)
	}
	for i, moniker := range monikers {
		check(moniker, fmt.Sprintf("portfolio_data[%d].moniker", i))
	}
	return flagged
}
