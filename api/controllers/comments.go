package controllers

import (
	"net/http"

	"github.com/angelmondragon/mediashare-backend/api/responses"
	"github.com/angelmondragon/mediashare-backend/api/validators"
	"github.com/angelmondragon/mediashare-backend/internal/comments"
	"github.com/angelmondragon/mediashare-backend/internal/users"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
)

func CommentCreate(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}

		mediaID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body comments.CreateRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		author := users.Summary{ID: identity.ID, Username: identity.Username}
		comment, err := svc.Create(r.Context(), mediaID, author, body.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}

// CommentList returns a media item's comments oldest first. Unknown media
// yields an empty list.
func CommentList(svc comments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comment service unavailable"))
			return
		}

		mediaID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteSuccess(w, []comments.CommentDTO{})
			return
		}

		items, err := svc.List(r.Context(), mediaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}
