package controllers

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/mediashare-backend/api/responses"
	"github.com/angelmondragon/mediashare-backend/api/validators"
	"github.com/angelmondragon/mediashare-backend/internal/media"
	"github.com/angelmondragon/mediashare-backend/internal/users"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
)

const (
	mediaFormField = "media"
	// multipartOverhead leaves room for boundaries and text fields on top of
	// the file size cap.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
	maxSearchLength   = 200
)

// MediaUpload accepts a multipart upload from a creator.
func MediaUpload(svc media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, multipartError(err, maxBytes))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile(mediaFormField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "media file is required").
					WithDetails(map[string]string{mediaFormField: "is required"}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media file"))
			return
		}
		defer file.Close()

		if header.Size > maxBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "media file too large").
				WithDetails(map[string]any{"max_bytes": maxBytes}))
			return
		}

		result, err := svc.Upload(r.Context(), media.UploadInput{
			Uploader:     users.Summary{ID: identity.ID, Username: identity.Username},
			File:         file,
			FileName:     header.Filename,
			DeclaredType: header.Header.Get("Content-Type"),
			Title:        r.FormValue("title"),
			Caption:      r.FormValue("caption"),
			Location:     r.FormValue("location"),
			People:       r.FormValue("people"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func multipartError(err error, maxBytes int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return pkgerrors.New(pkgerrors.CodeTooLarge, "media file too large").
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected multipart/form-data body")
}

// MediaList returns every media item newest first, optionally filtered by
// q, type and user_id.
func MediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		mediaType, err := validators.ParseQueryMediaType(r, "type")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), media.ListParams{
			Search:    validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength),
			MediaType: mediaType,
			UserID:    userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func MediaGet(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// MediaDelete removes a media item with its blob, comments and ratings.
func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		if _, ok := requireIdentity(w, r, logg); !ok {
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
