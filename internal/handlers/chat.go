package handlers

import (
	"errors"
	"net/http"

	"github.com/handsomefox/reelscout/internal/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// postChat answers with 200 and an assistant reply for anything but a
// missing message, including upstream failures.
func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) error {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		return badRequest("Message is required")
	}
	reply, err := h.chat.Reply(r.Context(), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		return badRequest("Message is required")
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, &chatResponse{Response: reply})
	return nil
}
