package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/service"
	"github.com/dsoklic/parley/internal/transport/http/middleware"
)

type DMHandler struct {
	dmService *service.DMService
}

func NewDMHandler(dmService *service.DMService) *DMHandler {
	return &DMHandler{dmService: dmService}
}

// Open returns the direct channel with the addressed user, creating it on
// first contact. Both call orders land on the same channel.
func (h *DMHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherID, err := uuid.Parse(r.PathValue("uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	ch, err := h.dmService.Open(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, err, "open direct channel")
		return
	}

	writeJSON(w, http.StatusOK, ch)
}
