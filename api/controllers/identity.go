package controllers

import (
	"net/http"

	"github.com/angelmondragon/mediashare-backend/api/middleware"
	"github.com/angelmondragon/mediashare-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
)

// requireIdentity writes a 401 and returns false when Auth did not run.
func requireIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return middleware.Identity{}, false
	}
	return identity, true
}
