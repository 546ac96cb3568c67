package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/processors"
	"github.com/username/pypdash/src/security/validation"
)

type stubLoader struct {
	mu      sync.Mutex
	payload *models.Payload
	err     error
	calls   int
}

func (l *stubLoader) ParseDir(dir string) (*models.Payload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.payload, l.err
}

type countingGrowthProcessor struct {
	processors.GrowthProcessor
	calls int
}

func (p *countingGrowthProcessor) Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error) {
	p.calls++
	return p.GrowthProcessor.Process(payload, viewport)
}

func testPayload() *models.Payload {
	return &models.Payload{
		BreakdownByMoniker:   []models.BreakdownPoint{{Moniker: "AAPL", Percent: 0.6}, {Moniker: "VOO", Percent: 0.4}},
		BreakdownByStockType: []models.BreakdownPoint{{StockType: "EQUITY", Percent: 0.6}, {StockType: "ETF", Percent: 0.4}},
		BreakdownBySector:    []models.BreakdownPoint{{Sector: "technology", Percent: 1}},
		GrowthBreakdown: models.GrowthBreakdown{
			models.StockTypeEquity: {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "AAPL", Value: 0.1}}}},
			models.StockTypeETF:    {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "VOO", Value: 0.05}}}},
		},
		GrowthBreakdownMoM: models.GrowthBreakdown{
			models.StockTypeEquity: {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "AAPL", Value: 0}}}},
			models.StockTypeETF:    {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "VOO", Value: 0}}}},
		},
		Growth: []models.GrowthPoint{
			{Month: "Jan-24", Invested: 100, Value: 110, Profit: 10, ProfitRatio: 0.1},
		},
		Summary:   models.SummaryRecord{Username: "jane", Invested: 100, Value: 110, Percent: 10, Equities: 1, ETFs: 1},
		Portfolio: []models.StockRow{{Moniker: "AAPL", Invested: 60, Value: 66, Amount: 0.5}},
	}
}

func newTestService(loader PayloadLoader, growth processors.GrowthProcessor) DashboardService {
	if growth == nil {
		growth = processors.NewGrowthProcessor()
	}
	return NewDashboardService(
		loader,
		"testdata",
		processors.NewBreakdownProcessor(),
		growth,
		processors.NewSummaryRenderer(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

func TestDashboardNotLoaded(t *testing.T) {
	svc := newTestService(&stubLoader{}, nil)
	ctx := context.Background()

	_, err := svc.Charts(ctx, models.Viewport{})
	assert.ErrorIs(t, err, ErrPayloadNotLoaded)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrPayloadNotLoaded)
	assert.False(t, svc.Status().Loaded)
}

func TestDashboardReloadAndRender(t *testing.T) {
	loader := &stubLoader{payload: testPayload()}
	svc := newTestService(loader, nil)
	ctx := context.Background()

	require.NoError(t, svc.Reload(ctx))
	status := svc.Status()
	assert.True(t, status.Loaded)
	assert.False(t, status.LoadedAt.IsZero())
	assert.Empty(t, status.Warnings)

	charts, err := svc.Charts(ctx, models.Viewport{IsXLarge: true})
	require.NoError(t, err)
	require.Len(t, charts, 12)
	assert.Equal(t, models.CanvasBreakdownByMoniker, charts[0].Canvas)
	assert.Equal(t, models.CanvasAnnualGrowth, charts[11].Canvas)
	assert.Equal(t, models.RightLegend, charts[0].Config.Options.Plugins.Legend)

	chart, err := svc.Chart(ctx, models.CanvasProfitGrowth, models.Viewport{})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.00"}, chart.Config.Data.Datasets[0].Data)

	_, err = svc.Chart(ctx, "nope", models.Viewport{})
	assert.ErrorIs(t, err, ErrUnknownCanvas)

	view, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane", view.Username)
	assert.Equal(t, "$110", view.CurrentValue)
}

func TestDashboardCachesPerViewport(t *testing.T) {
	growth := &countingGrowthProcessor{GrowthProcessor: processors.NewGrowthProcessor()}
	svc := newTestService(&stubLoader{payload: testPayload()}, growth)
	ctx := context.Background()
	require.NoError(t, svc.Reload(ctx))

	first, err := svc.Charts(ctx, models.Viewport{IsLarge: true})
	require.NoError(t, err)
	second, err := svc.Charts(ctx, models.Viewport{IsLarge: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, growth.calls)

	_, err = svc.Charts(ctx, models.Viewport{})
	require.NoError(t, err)
	assert.Equal(t, 2, growth.calls)

	// A reload invalidates every cached render.
	require.NoError(t, svc.Reload(ctx))
	_, err = svc.Charts(ctx, models.Viewport{IsLarge: true})
	require.NoError(t, err)
	assert.Equal(t, 3, growth.calls)
}

func TestDashboardReloadFailureKeepsPayload(t *testing.T) {
	loader := &stubLoader{payload: testPayload()}
	svc := newTestService(loader, nil)
	ctx := context.Background()
	require.NoError(t, svc.Reload(ctx))

	loader.err = errors.New("disk gone")
	err := svc.Reload(ctx)
	assert.ErrorIs(t, err, ErrPayloadLoadFailed)

	view, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane", view.Username)
}

func TestDashboardRejectsInvalidPayload(t *testing.T) {
	bad := testPayload()
	bad.BreakdownByMoniker[0].Percent = 1.5
	svc := newTestService(&stubLoader{payload: bad}, nil)

	err := svc.Reload(context.Background())
	assert.ErrorIs(t, err, ErrPayloadLoadFailed)
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
	assert.False(t, svc.Status().Loaded)
}

func TestDashboardReloadMissingSeriesKeepsPayload(t *testing.T) {
	loader := &stubLoader{payload: testPayload()}
	svc := newTestService(loader, nil)
	ctx := context.Background()
	require.NoError(t, svc.Reload(ctx))
	loadedAt := svc.Status().LoadedAt

	broken := testPayload()
	delete(broken.GrowthBreakdown, models.StockTypeETF)
	loader.payload = broken

	err := svc.Reload(ctx)
	assert.ErrorIs(t, err, ErrPayloadLoadFailed)
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
	assert.Equal(t, loadedAt, svc.Status().LoadedAt)

	charts, err := svc.Charts(ctx, models.Viewport{})
	require.NoError(t, err)
	assert.Len(t, charts, 12)
}

type failingGrowthProcessor struct {
	processors.GrowthProcessor
}

func (p *failingGrowthProcessor) Process(payload *models.Payload, viewport models.Viewport) ([]models.Chart, error) {
	return nil, processors.ErrMalformedMonth
}

func TestDashboardRenderFailure(t *testing.T) {
	svc := newTestService(&stubLoader{}, &failingGrowthProcessor{GrowthProcessor: processors.NewGrowthProcessor()})
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx, testPayload()))

	_, err := svc.Charts(ctx, models.Viewport{})
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.ErrorIs(t, err, processors.ErrMalformedMonth)
}

func TestDashboardWarnings(t *testing.T) {
	p := testPayload()
	p.BreakdownByMoniker[1].Percent = 0.3
	p.Portfolio[0].Moniker = "<script>x</script>"
	svc := newTestService(&stubLoader{}, nil)

	require.NoError(t, svc.Load(context.Background(), p))
	warnings := svc.Status().Warnings
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "breakdown_by_moniker_data sums to 0.900000")
	assert.Contains(t, warnings[1], "portfolio_data[0].moniker")
}

func TestDashboardConcurrentReads(t *testing.T) {
	svc := newTestService(&stubLoader{payload: testPayload()}, nil)
	ctx := context.Background()
	require.NoError(t, svc.Reload(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				assert.NoError(t, svc.Reload(ctx))
				return
			}
			_, err := svc.Charts(ctx, models.Viewport{IsLarge: i%2 == 0})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
