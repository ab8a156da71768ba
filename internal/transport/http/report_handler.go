package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "revpulse/internal/errors"
	"revpulse/internal/middleware"
	"revpulse/internal/services"
	api "revpulse/pkg/contracts/api/v1"
	"revpulse/pkg/contracts/domain"
)

// Query parameter names of the filter dimensions
const (
	QueryLocation = "location"
	QueryPeriod   = "period"
	QueryItem     = "item"
)

// ReportHandler serves reports, filter options, transactions and exports
type ReportHandler struct {
	service       ReportServiceInterface
	validator     *middleware.Validator
	reloadLimiter *middleware.RateLimiter
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler. reloadLimiter may be nil to
// leave POST /reload unlimited.
func NewReportHandler(service ReportServiceInterface, reloadLimiter *middleware.RateLimiter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:       service,
		validator:     middleware.NewValidator(),
		reloadLimiter: reloadLimiter,
		logger:        logger.With(slog.String("component", "report_handler")),
		errorHandler:  errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/report", h.GetReport)
		r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).
			Post("/report", h.PostReport)
		r.Get("/filters", h.GetFilters)
		r.Get("/transactions", h.GetTransactions)
		r.Get("/sources", h.GetSources)
		r.Get("/cache", h.GetCacheStats)

		if h.reloadLimiter != nil {
			r.With(h.reloadLimiter.Handler).Post("/reload", h.Reload)
		} else {
			r.Post("/reload", h.Reload)
		}
	})

	r.Route("/export/{format}", func(r chi.Router) {
		r.Use(h.ExportCtx)
		r.Get("/", h.Export)
	})

	return r
}

// ExportCtx rejects unsupported export formats
func (h *ReportHandler) ExportCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "format") {
		case services.FormatCSV, services.FormatXLSX:
			next.ServeHTTP(w, r)
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format",
				fmt.Sprintf("unsupported export format %q, use csv or xlsx", chi.URLParam(r, "format"))))
		}
	})
}

// GetReport handles GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderReport(w, r, filter)
}

// PostReport handles POST /api/report
func (h *ReportHandler) PostReport(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderReport(w, r, req.ToFilterState())
}

func (h *ReportHandler) renderReport(w http.ResponseWriter, r *http.Request, filter domain.FilterState) {
	view, err := h.service.Report(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build report",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(view))
}

// GetFilters handles GET /api/filters
func (h *ReportHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Filters(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(options))
}

// GetTransactions handles GET /api/transactions
func (h *ReportHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.Transactions(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.CanonicalRecord{}
	}
	render.JSON(w, r, api.SuccessList(records, len(records)))
}

// GetSources handles GET /api/sources
func (h *ReportHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.Sources(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.SuccessList(reports, len(reports)))
}

// GetCacheStats handles GET /api/cache
func (h *ReportHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Success(h.service.CacheStats()))
}

// Reload handles POST /api/reload
func (h *ReportHandler) Reload(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded over http",
		slog.Int("records", summary.Records),
		slog.String("fingerprint", summary.Fingerprint))
	render.JSON(w, r, api.Success(summary))
}

// Export handles GET /api/export/{format}. The file is built in memory so a
// failure can still be reported as a problem response.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	count, err := h.service.Export(r.Context(), &buf, format, filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		if apierrors.IsIngestError(err) {
			h.errorHandler.HandleError(w, r, err)
		} else {
			h.errorHandler.HandleError(w, r, apierrors.ExportError(format, err))
		}
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == services.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFileName(format)))
	header.Set("Content-Length", strconv.Itoa(buf.Len()))
	header.Set("X-Record-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}

// filterFromQuery reads repeatable location, period and item parameters
func (h *ReportHandler) filterFromQuery(r *http.Request) (domain.FilterState, error) {
	query := r.URL.Query()
	req := api.FilterRequest{
		Locations: queryValues(query, QueryLocation),
		Periods:   queryValues(query, QueryPeriod),
		Items:     queryValues(query, QueryItem),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return domain.FilterState{}, err
	}
	return req.ToFilterState(), nil
}

// queryValues returns nil when key is absent and a possibly empty,
// non-nil slice of its non-blank values when present
func queryValues(query map[string][]string, key string) []string {
	raw, ok := query[key]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	return values
}
