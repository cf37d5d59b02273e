// Package http provides the HTTP surface of the vault: routing, middleware,
// and JSON handlers for note operations.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atarasov/NoteVault/internal/vault"
)

// VaultService defines the vault operations the handlers need.
type VaultService interface {
	// SetPassword replaces the session key derived from password.
	SetPassword(password string)
	// AddNote encrypts and persists text, returning the new note's ID.
	AddNote(ctx context.Context, text string) (string, error)
	// DeleteNote removes the note with the given ID; false means unknown ID.
	DeleteNote(ctx context.Context, id string) (bool, error)
	// RemoveAll clears the collection.
	RemoveAll(ctx context.Context) error
	// Notes lists the notes visible under the current session key.
	Notes() []vault.Note
	// Note fetches one note by ID; false means unknown or not decryptable.
	Note(id string) (vault.Note, bool)
}

// NotesHandler handles HTTP requests for note operations.
type NotesHandler struct {
	Vault VaultService
}

// SetPassword handles POST /api/password.
// Body: {"password": "..."} — the empty string is a valid password.
func (h *NotesHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.Vault.SetPassword(req.Password)
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/notes. Notes that do not decrypt under the current
// password are simply absent from the response.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"notes": h.Vault.Notes()})
}

// Add handles POST /api/notes. Body: {"text": "..."}.
func (h *NotesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	id, err := h.Vault.AddNote(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, vault.ErrNoKey) {
			http.Error(w, "no password set", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// Get handles GET /api/notes/{id}. A note stored under a different password
// is indistinguishable from a missing one.
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, ok := h.Vault.Note(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(note)
}

// Delete handles DELETE /api/notes/{id}.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.Vault.DeleteNote(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "note not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/notes.
func (h *NotesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Vault.RemoveAll(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
