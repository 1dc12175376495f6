// Package api exposes the local admin surface: a health probe and read-only
// access to the stored voices, bearer-token protected.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cemck/siddy/internal/naming"
	"github.com/cemck/siddy/internal/store"
)

// VoiceStore is the read side of the voice store the handlers need.
// Implemented by store.Store.
type VoiceStore interface {
	Find(name string) (store.Record, error)
	Payload(rec store.Record) ([]byte, error)
	List() []store.Entry
}

type Deps struct {
	Store VoiceStore
	Token string
}

// voiceJSON is one listing row on the wire.
type voiceJSON struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}

// NewHandler builds the admin router. /health is open; everything else
// requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/voices", handleListVoices(deps))
		r.Get("/voices/{name}", handleGetVoice(deps))
	})

	return r
}

func handleListVoices(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := deps.Store.List()
		out := make([]voiceJSON, len(entries))
		for i, e := range entries {
			out[i] = voiceJSON{Name: e.Name, Author: e.AuthorHandle}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

func handleGetVoice(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := naming.Normalize(chi.URLParam(r, "name"))

		rec, err := deps.Store.Find(name)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "no voice named %q", name)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "looking up voice: %v", err)
			return
		}

		payload, err := deps.Store.Payload(rec)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "voice file for %q is missing", name)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading voice payload: %v", err)
			return
		}

		w.Header().Set("Content-Type", "audio/ogg")
		w.Write(payload)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
