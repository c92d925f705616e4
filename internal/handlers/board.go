package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/abrezinsky/mvpboard/internal/errors"
	"github.com/abrezinsky/mvpboard/internal/services"
)

// handleIndex renders the board page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.Execute(w, nil)
}

// handleGetBoard returns the full board read model
func (h *Handlers) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Picker.Board(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}

// handleStart kicks off a draw. A conflict here can only mean a draw
// is already running, so it carries the dedicated busy code.
func (h *Handlers) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.Picker.Start(r.Context()); err != nil {
		var appErr *errors.Error
		if stderrors.As(err, &appErr) && appErr.Kind == errors.ErrConflict {
			respondError(w, NewAPIError(http.StatusConflict, ErrCodeDrawBusy, appErr.Message))
			return
		}
		respondError(w, err)
		return
	}
	respondSuccess(w, "Draw started")
}

// handleSetWinner sets or clears the preset winner for the active scope
func (h *Handlers) handleSetWinner(w http.ResponseWriter, r *http.Request) {
	var req WinnerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	if err := h.Picker.SetWinner(r.Context(), name, services.SetWinnerOptions{Persist: true}); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Winner updated")
}

// handleSetNames replaces the global name list
func (h *Handlers) handleSetNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	names := h.Picker.SetNames(r.Context(), req.Text)
	respondOK(w, NamesResponse{Names: names})
}

// handleShuffleSeconds stores the clamped shuffle duration
func (h *Handlers) handleShuffleSeconds(w http.ResponseWriter, r *http.Request) {
	var req ShuffleSecondsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ShuffleSecondsResponse{Seconds: h.Picker.SetShuffleSeconds(req.Seconds)})
}

// handleSelectClass switches the active scope
func (h *Handlers) handleSelectClass(w http.ResponseWriter, r *http.Request) {
	var req SelectClassRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id := ""
	if req.ID != nil {
		id = *req.ID
	}
	if err := h.Picker.SelectClass(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	board, err := h.Picker.Board(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}
