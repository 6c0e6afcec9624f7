package rest

import (
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

func (h *handler) listKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.Credentials.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "API keys retrieved successfully.", keys)
}

func (h *handler) createKey(w http.ResponseWriter, r *http.Request) {
	var in services.CredentialInput
	if !h.decode(w, r, &in) {
		return
	}
	key, err := h.svc.Credentials.Create(r.Context(), userIDFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "API key added successfully.", key)
}

func (h *handler) updateKey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "keyID")
	if !ok {
		return
	}
	var patch services.CredentialPatch
	if !h.decode(w, r, &patch) {
		return
	}
	key, err := h.svc.Credentials.Update(r.Context(), userIDFromContext(r.Context()), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "API key updated successfully.", key)
}

func (h *handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "keyID")
	if !ok {
		return
	}
	if err := h.svc.Credentials.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "API key deleted successfully.", nil)
}
