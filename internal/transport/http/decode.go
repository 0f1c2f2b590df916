package http

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "nucleval/internal/errors"
)

// decoder reads and validates JSON request bodies
type decoder struct {
	validate *validator.Validate
}

func newDecoder() decoder {
	return decoder{validate: validator.New()}
}

// decode fills v from the request body and validates its struct tags
func (d decoder) decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apperrors.NewValidationError("malformed JSON body", err)
	}
	if err := d.validate.Struct(v); err != nil {
		return apperrors.NewValidationError("invalid request", err)
	}
	return nil
}
