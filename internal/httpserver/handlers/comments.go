package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/store"
)

const defaultMaxBody = 1 << 20

// ListComments answers GET /comments, narrowed by ?pageUrl= and ?status=.
func ListComments(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.Filter{PageURL: strings.TrimSpace(q.Get("pageUrl"))}

		if raw := q.Get("status"); raw != "" {
			st, err := domain.ParseStatus(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid status",
					domain.FieldError{Field: "status", Message: err.Error()})
				return
			}
			f.Status = st
		}

		comments, err := d.Store.List(r.Context(), f)
		if err != nil {
			writeStoreError(w, d.Logger, "list", err)
			return
		}
		writeJSON(w, http.StatusOK, comments)
	}
}

// GetComment answers GET /comments/{id}.
func GetComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		c, err := d.Store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, d.Logger, "fetch", err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// CreateComment answers POST /comments.
func CreateComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Comment
		if !decodeBody(w, r, d, &in) {
			return
		}

		// Identity and timestamps belong to the store.
		in.ID = nil
		in.CreatedAt = nil
		in.UpdatedAt = nil

		if err := domain.ValidateNew(&in); err != nil {
			writeValidationError(w, err)
			return
		}

		c, err := d.Store.Create(r.Context(), &in)
		if err != nil {
			writeStoreError(w, d.Logger, "create", err)
			return
		}

		d.Logger.Info("comment created",
			logger.Int64("id", c.IDValue()),
			logger.String("page_url", c.PageURL),
			logger.String("category", string(c.Category)))
		writeJSON(w, http.StatusCreated, c)
	}
}

// UpdateComment answers PUT /comments/{id} with a partial update.
func UpdateComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var u domain.CommentUpdate
		if !decodeBody(w, r, d, &u) {
			return
		}
		if err := domain.ValidateUpdate(u); err != nil {
			writeValidationError(w, err)
			return
		}

		c, err := d.Store.Update(r.Context(), id, u)
		if err != nil {
			writeStoreError(w, d.Logger, "update", err)
			return
		}

		d.Logger.Info("comment updated",
			logger.Int64("id", id),
			logger.String("status", string(c.Status)))
		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteComment answers DELETE /comments/{id}.
func DeleteComment(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := d.Store.Delete(r.Context(), id); err != nil {
			writeStoreError(w, d.Logger, "delete", err)
			return
		}
		d.Logger.Info("comment deleted", logger.Int64("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid comment id",
			domain.FieldError{Field: "id", Message: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, d deps.Deps, v any) bool {
	limit := d.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "Request body is required")
		default:
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
		}
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "Validation failed", verr.Fields...)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
