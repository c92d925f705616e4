package handlers

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// handleQR serves a PNG QR code pointing at the board URL so another
// device on the LAN can open the page by scanning it.
func (h *Handlers) handleQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.BoardURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
