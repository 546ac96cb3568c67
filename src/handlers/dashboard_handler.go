// src/handlers/dashboard_handler.go
package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/pypdash/src/logger"
	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/services"
	"github.com/username/pypdash/src/utils"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

// Fragments and text in a SummaryView are escaped when rendered, so they are inserted as-is.
var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"raw": func(s string) template.HTML { return template.HTML(s) },
}).ParseFS(templateFS, "templates/dashboard.html"))

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Routes mounts the dashboard API under the current router.
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/charts", h.HandleGetCharts)
	r.Get("/charts/{canvas}", h.HandleGetChart)
	r.Get("/summary", h.HandleGetSummary)
	r.Get("/status", h.HandleGetStatus)
	r.Post("/reload", h.HandleReload)
}

func viewportFromRequest(r *http.Request) models.Viewport {
	return models.ParseViewport(r.URL.Query().Get("viewport"))
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPayloadNotLoaded):
		utils.SendJSONError(w, "dashboard data is not loaded yet", http.StatusServiceUnavailable)
	case errors.Is(err, services.ErrUnknownCanvas):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrPayloadLoadFailed):
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.FromContext(r.Context()).Error("Dashboard request failed", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "failed to render dashboard", http.StatusInternalServerError)
	}
}

func (h *DashboardHandler) HandleGetCharts(w http.ResponseWriter, r *http.Request) {
	viewport := viewportFromRequest(r)
	charts, err := h.dashboardService.Charts(r.Context(), viewport)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, charts)
}

func (h *DashboardHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	canvas := chi.URLParam(r, "canvas")
	chart, err := h.dashboardService.Chart(r.Context(), canvas, viewportFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, chart)
}

// HandleGetSummary returns the summary view. With ?format=elements it returns the ordered
// DOM updates instead.
func (h *DashboardHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboardService.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "elements" {
		utils.SendJSON(w, view.Elements())
		return
	}
	utils.SendJSON(w, view)
}

func (h *DashboardHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.Status())
}

func (h *DashboardHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Info("Handling payload reload")
	if err := h.dashboardService.Reload(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, h.dashboardService.Status())
}

type dashboardPage struct {
	Viewport string
	Charts   []models.Chart
	Summary  models.SummaryView
}

// HandleDashboardPage renders the full page: one canvas per chart plus the summary tables.
func (h *DashboardHandler) HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	viewport := viewportFromRequest(r)
	charts, err := h.dashboardService.Charts(r.Context(), viewport)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	view, err := h.dashboardService.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := dashboardPage{Viewport: viewport.Key(), Charts: charts, Summary: view}
	if err := dashboardTemplate.Execute(w, page); err != nil {
		logger.FromContext(r.Context()).Error("Failed to render dashboard page", "error", err)
	}
}
