// src/parsers/pyp/parser.go
package pyp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/pypdash/src/logger"
	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/security/validation"
)

// Data files written by the exporter, in the order they are read.
var DataFiles = []string{"breakdown.js", "growth.js", "summary.js"}

// Variables expected across the data files.
const (
	VarBreakdownByMoniker   = "breakdown_by_moniker_data"
	VarBreakdownByStockType = "breakdown_by_stock_type_data"
	VarBreakdownBySector    = "breakdown_by_sector_data"
	VarGrowthBreakdown      = "growth_breakdown_by_stock_type_data"
	VarGrowthBreakdownMoM   = "growth_breakdown_mom_by_stock_type_data"
	VarGrowth               = "growth_data"
	VarSummary              = "summary_data"
	VarPortfolio            = "portfolio_data"
)

// Parser reads the "name = <json>" data files produced by the exporter.
type Parser struct{}

// NewParser creates a new instance of the Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseDir reads every data file in dir and decodes them into a single payload.
func (p *Parser) ParseDir(dir string) (*models.Payload, error) {
	vars := make(map[string]json.RawMessage)
	for _, name := range DataFiles {
		fileVars, err := p.parseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	return p.Decode(vars)
}

func (p *Parser) parseFile(path string) (map[string]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pyp parser: failed to open data file %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("pyp parser: failed to stat data file %s: %w", filepath.Base(path), err)
	}
	if err := validation.ValidateDataFile(f, info.Size()); err != nil {
		return nil, fmt.Errorf("pyp parser: %s: %w", filepath.Base(path), err)
	}

	vars, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("pyp parser: %s: %w", filepath.Base(path), err)
	}
	logger.L.Debug("Parsed data file", "file", filepath.Base(path), "variables", len(vars))
	return vars, nil
}

// Parse reads "name = <json>" assignments, one per line. Blank lines are skipped, a
// trailing semicolon and a leading var/let/const are tolerated. A later assignment to
// the same name replaces the earlier one.
func (p *Parser) Parse(r io.Reader) (map[string]json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), int(validation.MaxDataFileSize))

	vars := make(map[string]json.RawMessage)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: expected an assignment", lineNo)
		}
		name = strings.TrimSpace(name)
		for _, keyword := range []string{"var ", "let ", "const "} {
			name = strings.TrimSpace(strings.TrimPrefix(name, keyword))
		}
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("line %d: invalid variable name %q", lineNo, name)
		}

		value = strings.TrimSuffix(strings.TrimSpace(value), ";")
		raw := json.RawMessage(bytes.TrimSpace([]byte(value)))
		if !json.Valid(raw) {
			return nil, fmt.Errorf("line %d: variable %s is not valid JSON", lineNo, name)
		}
		vars[name] = raw
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return vars, nil
}

// Decode maps the exporter variables onto a payload. Every variable is required.
func (p *Parser) Decode(vars map[string]json.RawMessage) (*models.Payload, error) {
	payload := &models.Payload{}
	targets := []struct {
		name string
		dst  any
	}{
		{VarBreakdownByMoniker, &payload.BreakdownByMoniker},
		{VarBreakdownByStockType, &payload.BreakdownByStockType},
		{VarBreakdownBySector, &payload.BreakdownBySector},
		{VarGrowthBreakdown, &payload.GrowthBreakdown},
		{VarGrowthBreakdownMoM, &payload.GrowthBreakdownMoM},
		{VarGrowth, &payload.Growth},
		{VarSummary, &payload.Summary},
		{VarPortfolio, &payload.Portfolio},
	}

	for _, t := range targets {
		raw, ok := vars[t.name]
		if !ok {
			return nil, fmt.Errorf("pyp parser: missing variable %s", t.name)
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return nil, fmt.Errorf("pyp parser: failed to decode %s: %w", t.name, err)
		}
	}
	return payload, nil
}
