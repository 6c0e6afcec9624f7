package rest

import (
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

func (h *handler) refine(w http.ResponseWriter, r *http.Request) {
	var req services.RefineRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.AI.Refine(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Content processed successfully.", res)
}
