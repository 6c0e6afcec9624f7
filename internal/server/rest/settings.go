package rest

import (
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Settings.Get(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Settings retrieved successfully.", st)
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch services.SettingsPatch
	if !h.decode(w, r, &patch) {
		return
	}
	st, err := h.svc.Settings.Update(r.Context(), userIDFromContext(r.Context()), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Settings updated successfully.", st)
}
