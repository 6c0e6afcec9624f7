package rest

import "net/http"

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Notifications.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Notifications retrieved successfully.", list)
}

func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.MarkRead(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Notification marked as read.", nil)
}

func (h *handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Notifications.MarkAllRead(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "All notifications marked as read.", map[string]int64{"updated": n})
}

func (h *handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Notification deleted.", nil)
}
