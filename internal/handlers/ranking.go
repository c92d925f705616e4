package handlers

import "net/http"

// handleGetRanking returns the labeled ledger for the active scope
func (h *Handlers) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]interface{}{"rows": h.Ranking.ActiveRows()})
}

// handleDeleteRankingEntry removes one ledger entry by its timestamp
func (h *Handlers) handleDeleteRankingEntry(w http.ResponseWriter, r *http.Request) {
	ts, err := parseInt64Param(r, "ts")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Ranking.Remove(r.Context(), ts); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleClearRanking empties the active scope's ledger
func (h *Handlers) handleClearRanking(w http.ResponseWriter, r *http.Request) {
	if err := h.Ranking.Clear(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Ranking cleared")
}
