// src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/pypdash/src/models"
)

// Define common service errors
var (
	ErrPayloadNotLoaded  = errors.New("payload not loaded")
	ErrPayloadLoadFailed = errors.New("payload load failed")
	ErrRenderFailed      = errors.New("render failed")
	ErrUnknownCanvas     = errors.New("unknown canvas")
)

// PayloadLoader reads a full payload from a data directory.
type PayloadLoader interface {
	ParseDir(dir string) (*models.Payload, error)
}

// DashboardStatus describes the payload currently served.
type DashboardStatus struct {
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
	DataDir  string    `json:"dataDir"`
	Warnings []string  `json:"warnings,omitempty"`
}

// DashboardService holds the current payload and renders it into charts and summary content.
type DashboardService interface {
	// Reload re-reads the data directory. On failure the previous payload stays in place.
	Reload(ctx context.Context) error
	// Load replaces the payload with one that was read elsewhere.
	Load(ctx context.Context, payload *models.Payload) error
	Status() DashboardStatus

	Charts(ctx context.Context, viewport models.Viewport) ([]models.Chart, error)
	Chart(ctx context.Context, canvas string, viewport models.Viewport) (models.Chart, error)
	Summary(ctx context.Context) (models.SummaryView, error)
}
