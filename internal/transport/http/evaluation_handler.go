package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "nucleval/internal/errors"
	"nucleval/internal/evaluation"
	"nucleval/internal/exporter"
	api "nucleval/pkg/contracts/api/v1"
)

// Report formats accepted by the evaluate route
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EvaluationHandler exposes alignment, averaging and full evaluations
type EvaluationHandler struct {
	service      *evaluation.Service
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	decoder      decoder
}

// NewEvaluationHandler creates an evaluation handler
func NewEvaluationHandler(service *evaluation.Service, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *EvaluationHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "evaluation")),
		errorHandler: errorHandler,
		decoder:      newDecoder(),
	}
}

// RegisterRoutes registers the evaluation routes on r
func (h *EvaluationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/align", h.Align)
	r.Post("/average", h.Average)
	r.Post("/evaluate", h.Evaluate)
}

// Align handles POST /api/v1/align
func (h *EvaluationHandler) Align(w http.ResponseWriter, r *http.Request) {
	var req api.AlignRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Align(r.Context(), req.Series, evaluation.Overrides{Tolerance: req.Tolerance})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, toAlignResponse(res))
}

// Average handles POST /api/v1/average
func (h *EvaluationHandler) Average(w http.ResponseWriter, r *http.Request) {
	var req api.AverageRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Average(r.Context(), toCollection(req), evaluation.Overrides{
		ErrorLimit: req.ErrorLimit,
		Method:     req.Method,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV && format != FormatXLSX {
		h.errorHandler.HandleError(w, r,
			apperrors.NewValidationError("unsupported report format "+format, nil).
				WithContext("supported", []string{FormatJSON, FormatCSV, FormatXLSX}))
		return
	}

	var req api.EvaluateRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rep, err := h.service.Evaluate(r.Context(), toEvaluationRequest(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	switch format {
	case FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="nucleval-report.csv"`)
		err = exporter.WriteCSV(w, rep)
	case FormatXLSX:
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="nucleval-report.xlsx"`)
		err = exporter.WriteWorkbook(w, rep)
	default:
		render.JSON(w, r, rep)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write report",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}
