// src/services/dashboard_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"gonum.org/v1/gonum/floats"

	"github.com/username/pypdash/src/logger"
	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/processors"
	"github.com/username/pypdash/src/security/validation"
)

const (
	ckCharts               = "charts_v%d_%s"
	ckSummary              = "summary_v%d"
	DefaultCacheExpiration = 10 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	// breakdownSumTolerance is how far a breakdown's fractions may drift from 1 before a warning.
	breakdownSumTolerance = 1e-4
)

type dashboardServiceImpl struct {
	loader             PayloadLoader
	dataDir            string
	breakdownProcessor processors.BreakdownProcessor
	growthProcessor    processors.GrowthProcessor
	summaryRenderer    processors.SummaryRenderer
	renderCache        *cache.Cache

	mu       sync.RWMutex
	payload  *models.Payload
	version  uint64
	loadedAt time.Time
	warnings []string
}

func NewDashboardService(
	loader PayloadLoader,
	dataDir string,
	breakdownProcessor processors.BreakdownProcessor,
	growthProcessor processors.GrowthProcessor,
	summaryRenderer processors.SummaryRenderer,
	renderCache *cache.Cache,
) DashboardService {
	return &dashboardServiceImpl{
		loader:             loader,
		dataDir:            dataDir,
		breakdownProcessor: breakdownProcessor,
		growthProcessor:    growthProcessor,
		summaryRenderer:    summaryRenderer,
		renderCache:        renderCache,
	}
}

func (s *dashboardServiceImpl) Reload(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Reloading payload", "dataDir", s.dataDir)

	payload, err := s.loader.ParseDir(s.dataDir)
	if err != nil {
		log.Error("Failed to read payload files", "dataDir", s.dataDir, "error", err)
		return fmt.Errorf("%w: %w", ErrPayloadLoadFailed, err)
	}
	return s.Load(ctx, payload)
}

func (s *dashboardServiceImpl) Load(ctx context.Context, payload *models.Payload) error {
	log := logger.FromContext(ctx)

	if err := validation.ValidatePayload(payload); err != nil {
		log.Error("Payload rejected", "error", err)
		return fmt.Errorf("%w: %w", ErrPayloadLoadFailed, err)
	}

	warnings := checkBreakdownSums(payload)
	for _, field := range scanPayloadText(payload) {
		warnings = append(warnings, fmt.Sprintf("%s contains markup and will be escaped", field))
	}
	for _, w := range warnings {
		log.Warn("Payload warning", "warning", w)
	}

	s.mu.Lock()
	s.payload = payload
	s.version++
	s.loadedAt = time.Now()
	s.warnings = warnings
	version := s.version
	s.mu.Unlock()

	s.renderCache.Flush()
	log.Info("Payload loaded", "version", version,
		"monikers", len(payload.BreakdownByMoniker), "months", len(payload.Growth), "holdings", len(payload.Portfolio))
	return nil
}

func (s *dashboardServiceImpl) Status() DashboardStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DashboardStatus{
		Loaded:   s.payload != nil,
		LoadedAt: s.loadedAt,
		DataDir:  s.dataDir,
		Warnings: s.warnings,
	}
}

func (s *dashboardServiceImpl) snapshot() (*models.Payload, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payload == nil {
		return nil, 0, ErrPayloadNotLoaded
	}
	return s.payload, s.version, nil
}

// Charts renders the breakdown charts followed by the growth charts. Results are cached per
// payload version and viewport; callers must not modify the returned slice.
func (s *dashboardServiceImpl) Charts(ctx context.Context, viewport models.Viewport) ([]models.Chart, error) {
	payload, version, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(ckCharts, version, viewport.Key())
	if cached, found := s.renderCache.Get(cacheKey); found {
		logger.FromContext(ctx).Debug("Charts served from cache", "key", cacheKey)
		return cached.([]models.Chart), nil
	}

	breakdownCharts, err := s.breakdownProcessor.Process(payload, viewport)
	if err != nil {
		logger.FromContext(ctx).Error("Breakdown charts failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	growthCharts, err := s.growthProcessor.Process(payload, viewport)
	if err != nil {
		logger.FromContext(ctx).Error("Growth charts failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	charts := make([]models.Chart, 0, len(breakdownCharts)+len(growthCharts))
	charts = append(charts, breakdownCharts...)
	charts = append(charts, growthCharts...)

	s.renderCache.Set(cacheKey, charts, cache.DefaultExpiration)
	return charts, nil
}

func (s *dashboardServiceImpl) Chart(ctx context.Context, canvas string, viewport models.Viewport) (models.Chart, error) {
	charts, err := s.Charts(ctx, viewport)
	if err != nil {
		return models.Chart{}, err
	}
	for _, chart := range charts {
		if chart.Canvas == canvas {
			return chart, nil
		}
	}
	return models.Chart{}, fmt.Errorf("%w: %s", ErrUnknownCanvas, canvas)
}

func (s *dashboardServiceImpl) Summary(ctx context.Context) (models.SummaryView, error) {
	payload, version, err := s.snapshot()
	if err != nil {
		return models.SummaryView{}, err
	}

	cacheKey := fmt.Sprintf(ckSummary, version)
	if cached, found := s.renderCache.Get(cacheKey); found {
		return cached.(models.SummaryView), nil
	}

	view := s.summaryRenderer.Render(payload.Summary, payload.Portfolio)
	s.renderCache.Set(cacheKey, view, cache.DefaultExpiration)
	return view, nil
}

// checkBreakdownSums reports breakdowns whose fractions do not add up to 1.
// Empty breakdowns are skipped.
func checkBreakdownSums(payload *models.Payload) []string {
	var warnings []string
	breakdowns := []struct {
		name   string
		points []models.BreakdownPoint
	}{
		{"breakdown_by_moniker_data", payload.BreakdownByMoniker},
		{"breakdown_by_stock_type_data", payload.BreakdownByStockType},
		{"breakdown_by_sector_data", payload.BreakdownBySector},
	}
	for _, b := range breakdowns {
		if len(b.points) == 0 {
			continue
		}
		fractions := make([]float64, len(b.points))
		for i, p := range b.points {
			fractions[i] = p.Percent
		}
		if sum := floats.Sum(fractions); math.Abs(sum-1) > breakdownSumTolerance {
			warnings = append(warnings, fmt.Sprintf("%s sums to %.6f, expected 1", b.name, sum))
		}
	}
	return warnings
}

func scanPayloadText(payload *models.Payload) []string {
	summaryFields := map[string]string{
		"summary_data.date":      payload.Summary.Date,
		"summary_data.username":  payload.Summary.Username,
		"summary_data.portfolio": payload.Summary.Portfolio,
		"summary_data.currency":  payload.Summary.Currency,
	}
	monikers := make([]string, len(payload.Portfolio))
	for i, row := range payload.Portfolio {
		monikers[i] = row.Moniker
	}
	return validation.ScanPayloadText(summaryFields, monikers, "payload")
}
