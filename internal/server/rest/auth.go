package rest

import (
	"net/http"

	"github.com/dmitrijs2005/doccoon/internal/server/models"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type profileResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
}

func newProfileResponse(u *models.User) profileResponse {
	return profileResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, FullName: u.FullName()}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Users.Register(r.Context(), req.Email, req.Password, req.FirstName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, "User registered successfully.", userResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	pair, err := h.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Login successful.", pair)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	pair, err := h.svc.Users.RefreshToken(r.Context(), req.Refresh)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Token refreshed.", pair)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Profile(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Profile retrieved successfully.", newProfileResponse(u))
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch services.ProfilePatch
	if !h.decode(w, r, &patch) {
		return
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), userIDFromContext(r.Context()), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Profile updated successfully.", newProfileResponse(u))
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Users.ChangePassword(r.Context(), userIDFromContext(r.Context()), req.OldPassword, req.NewPassword); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Password changed successfully.", nil)
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.DeleteAccount(r.Context(), userIDFromContext(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, "Account deleted successfully.", nil)
}
