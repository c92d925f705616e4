package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetClasses lists the loaded classes
func (h *Handlers) handleGetClasses(w http.ResponseWriter, r *http.Request) {
	board, err := h.Picker.Board(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ClassListResponse{Classes: board.Classes, SelectedClassID: board.SelectedClassID})
}

// handleCreateClass creates a class. A duplicate name is refused with a
// conflict unless the request carries the confirm flag.
func (h *Handlers) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req ClassCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	class, err := h.Class.Add(r.Context(), req.Name, req.Students, req.Confirm)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, ClassResponse{Class: class})
}

// handleUpdateClass replaces a class roster
func (h *Handlers) handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, BadRequest("Missing id parameter"))
		return
	}

	var req ClassUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Class.EditStudents(r.Context(), id, req.Students); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Class updated")
}

// handleDeleteClass removes a class and its history
func (h *Handlers) handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, BadRequest("Missing id parameter"))
		return
	}

	if err := h.Class.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
