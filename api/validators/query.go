package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
)

// ParseUUIDParam reads a chi URL parameter as a UUID. Malformed ids are
// reported as not found since no resource can match them.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseQueryUUID returns nil when the parameter is absent.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// ParseQueryMediaType returns nil when the parameter is absent.
func ParseQueryMediaType(r *http.Request, key string) (*enums.MediaType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	mt, err := enums.ParseMediaType(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type must be image or video").WithDetails(map[string]any{"field": key})
	}
	return &mt, nil
}
