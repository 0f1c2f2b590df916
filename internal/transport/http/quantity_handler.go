package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"nucleval/internal/config"
	apperrors "nucleval/internal/errors"
	"nucleval/internal/quantity"
	api "nucleval/pkg/contracts/api/v1"
)

// QuantityHandler parses, renders and combines single quantities
type QuantityHandler struct {
	cfg          config.EvaluationConfig
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	decoder      decoder
}

// NewQuantityHandler creates a quantity handler. cfg supplies the default
// error limit and small-error threshold.
func NewQuantityHandler(cfg config.EvaluationConfig, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *QuantityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuantityHandler{
		cfg:          cfg,
		logger:       logger.With(slog.String("handler", "quantity")),
		errorHandler: errorHandler,
		decoder:      newDecoder(),
	}
}

// Routes returns the quantity routes
func (h *QuantityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/parse", h.Parse)
	r.Post("/format", h.Format)
	r.Post("/arithmetic", h.Arithmetic)
	return r
}

func (h *QuantityHandler) errorLimit(override *int) int {
	if override != nil {
		return *override
	}
	return h.cfg.ErrorLimit
}

// Parse handles POST /api/v1/quantities/parse
func (h *QuantityHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req api.ParseRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	q, err := quantity.Parse(req.Value, req.Uncertainty)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, toQuantityResponse(q, q.FormatWith(quantity.FormatOptions{
		ErrorLimit: h.errorLimit(req.ErrorLimit),
		SmallError: h.cfg.SmallErrorThreshold,
	})))
}

// Format handles POST /api/v1/quantities/format
func (h *QuantityHandler) Format(w http.ResponseWriter, r *http.Request) {
	var req api.FormatRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	smallError := req.SmallError
	if smallError == 0 {
		smallError = h.cfg.SmallErrorThreshold
	}
	q := quantity.FromNumeric(*req.Value, req.Upper, req.Lower)
	render.JSON(w, r, toQuantityResponse(q, q.FormatWith(quantity.FormatOptions{
		ErrorLimit: h.errorLimit(req.ErrorLimit),
		SmallError: smallError,
	})))
}

// Arithmetic handles POST /api/v1/quantities/arithmetic
func (h *QuantityHandler) Arithmetic(w http.ResponseWriter, r *http.Request) {
	var req api.ArithmeticRequest
	if err := h.decoder.decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	op, err := quantity.ParseOperation(req.Operation)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	left, err := quantity.Parse(req.Left.Value, req.Left.Uncertainty)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	right, err := quantity.Parse(req.Right.Value, req.Right.Uncertainty)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := left.Apply(op, right)
	if err != nil {
		h.logger.DebugContext(r.Context(), "arithmetic rejected",
			slog.String("operation", string(op)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, toQuantityResponse(res, res.Format(h.errorLimit(req.ErrorLimit))))
}
