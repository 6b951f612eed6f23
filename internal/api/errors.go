package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

// writeError maps a service error onto its status. Unclassified errors are
// logged with a stack and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var (
		ve services.ValidationError
		re services.ReferenceNotFoundError
		de services.DuplicateKeyError
	)
	switch {
	case errors.As(err, &ve):
		respond.WriteBadRequest(w, ve.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		respond.WriteUnauthorized(w, auth.ErrUnauthorized.Error())
	case errors.Is(err, auth.ErrForbidden):
		respond.WriteForbidden(w, auth.ErrForbidden.Error())
	case errors.As(err, &re):
		respond.WriteNotFound(w, re.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respond.WriteNotFound(w, services.ErrInvalidCredentials.Error())
	case errors.As(err, &de):
		respond.WriteConflict(w, de.Message)
	default:
		log.Error().Stack().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		respond.WriteInternalError(w, "internal server error")
	}
}
