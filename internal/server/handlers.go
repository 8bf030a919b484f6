package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/store"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func listHandler[T any](s *Server, list func(ctx context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		s.writeCached(w, r, items)
	}
}

func (s *Server) getVpc(w http.ResponseWriter, r *http.Request) {
	vpc, err := s.stores.Vpcs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeCached(w, r, vpc)
}

func (s *Server) createVpc(w http.ResponseWriter, r *http.Request) {
	vpc, err := decodeVpc(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to generate vpc id: %w", err))
		return
	}
	vpc.ID = id.String()

	if err := s.stores.Vpcs.Create(r.Context(), vpc); err != nil {
		s.writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("vpc_id", vpc.ID).Msg("Created vpc")
	writeJSON(w, http.StatusCreated, vpc)
}

func (s *Server) updateVpc(w http.ResponseWriter, r *http.Request) {
	vpc, err := decodeVpc(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if vpc.ID != "" && vpc.ID != id {
		s.writeError(w, r, fmt.Errorf("%w: body id %q does not match path id %q", errBadRequest, vpc.ID, id))
		return
	}
	vpc.ID = id

	if err := s.stores.Vpcs.Update(r.Context(), vpc); err != nil {
		s.writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("vpc_id", vpc.ID).Msg("Updated vpc")
	writeJSON(w, http.StatusOK, vpc)
}

func (s *Server) deleteVpc(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.stores.Vpcs.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("vpc_id", id).Msg("Deleted vpc")
	w.WriteHeader(http.StatusNoContent)
}

func decodeVpc(w http.ResponseWriter, r *http.Request) (models.Vpc, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var vpc models.Vpc
	if err := dec.Decode(&vpc); err != nil {
		return models.Vpc{}, fmt.Errorf("%w: invalid vpc body: %w", errBadRequest, err)
	}
	if err := vpc.ValidateNetwork(); err != nil {
		return models.Vpc{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return vpc, nil
}

// writeCached writes v with an ETag derived from the body and answers
// conditional requests that already hold it with 304.
func (s *Server) writeCached(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to encode response: %w", err))
		return
	}

	etag := computeETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		s.metrics.ServerNotModifiedTotal.Add(r.Context(), 1)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func computeETag(body []byte) string {
	h := crc64nvme.New()
	_, _ = h.Write(body)
	return `"` + base58.Encode(h.Sum(nil)) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	tags := strings.Split(header, ",")
	for i := range tags {
		tags[i] = strings.TrimPrefix(strings.TrimSpace(tags[i]), "W/")
	}
	return slices.Contains(tags, etag)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	evt := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		evt = zerolog.Ctx(r.Context()).Error()
	}
	evt.Err(err).Int("status", status).Msg("Request failed")

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, models.ErrInvalidNetwork):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
