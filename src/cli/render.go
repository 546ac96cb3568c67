// src/cli/render.go
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/username/pypdash/src/logger"
	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/parsers/pyp"
	"github.com/username/pypdash/src/processors"
	"github.com/username/pypdash/src/services"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render charts and summary once",
	Long: `Read the data files from --data-dir and render every chart configuration and
the summary view for the given viewport.

Without --out the result is written to stdout as one document with "charts" and
"summary" keys. With --out, charts and summary are written to separate files
in that directory.

Examples:
  pypdash render --data-dir public/js/output
  pypdash render --viewport xl --out build/
  pypdash render --format yaml`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

// Render flags
var (
	renderDataDir  string
	renderViewport string
	renderOutDir   string
	renderFormat   string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderDataDir, "data-dir", "public/js/output", "Directory holding breakdown.js, growth.js and summary.js")
	renderCmd.Flags().StringVar(&renderViewport, "viewport", "", "Breakpoint for legend placement: lg or xl (default: small)")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "Output directory (default: stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "Output format: json or yaml")
}

// renderResult is the document written by the render command.
type renderResult struct {
	Charts  []models.Chart     `json:"charts"`
	Summary models.SummaryView `json:"summary"`
}

func runRender(cmd *cobra.Command, args []string) error {
	// Logs go to stderr so stdout stays a clean document.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger.InitLogger(level, os.Stderr)

	if renderFormat != "json" && renderFormat != "yaml" {
		return fmt.Errorf("unsupported format %q (use json or yaml)", renderFormat)
	}

	result, err := renderPayload(cmd.Context(), renderDataDir, models.ParseViewport(renderViewport))
	if err != nil {
		return err
	}

	if renderOutDir == "" {
		return writeDocument(cmd.OutOrStdout(), result, renderFormat)
	}
	return writeFiles(renderOutDir, result, renderFormat)
}

func renderPayload(ctx context.Context, dataDir string, viewport models.Viewport) (*renderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	svc := services.NewDashboardService(
		pyp.NewParser(),
		dataDir,
		processors.NewBreakdownProcessor(),
		processors.NewGrowthProcessor(),
		processors.NewSummaryRenderer(),
		cache.New(cache.NoExpiration, 0),
	)
	if err := svc.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load payload: %w", err)
	}

	charts, err := svc.Charts(ctx, viewport)
	if err != nil {
		return nil, fmt.Errorf("render charts: %w", err)
	}
	summary, err := svc.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return &renderResult{Charts: charts, Summary: summary}, nil
}

func writeFiles(outDir string, result *renderResult, format string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	files := []struct {
		name string
		v    any
	}{
		{"charts." + format, result.Charts},
		{"summary." + format, result.Summary},
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.name, err)
		}
		if err := writeDocument(out, f.v, format); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close %s: %w", f.name, err)
		}
		logger.L.Info("Wrote render output", "path", path)
	}
	return nil
}

// writeDocument encodes v as indented JSON, or as YAML derived from that JSON so the
// custom encodings (legend and fill as false) carry over.
func writeDocument(w io.Writer, v any, format string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}

	if format == "yaml" {
		var generic any
		if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
			return err
		}
		yamlEnc := yaml.NewEncoder(w)
		yamlEnc.SetIndent(2)
		if err := yamlEnc.Encode(generic); err != nil {
			return err
		}
		return yamlEnc.Close()
	}

	_, err := w.Write(buf.Bytes())
	return err
}
