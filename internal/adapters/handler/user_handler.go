package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/metrics"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/middleware"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
	metrics     *metrics.Metrics
}

func NewUserHandler(users ports.UserService, m *metrics.Metrics) *UserHandler {
	return &UserHandler{userService: users, metrics: m}
}

// callerEmail pulls the verified email installed by the auth middleware.
func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		respondError(w, domain.ErrUnauthenticated)
	}
	return email, ok
}

// parsePage reads the 1-indexed page/limit query parameters.
func parsePage(r *http.Request) domain.Page {
	var page domain.Page
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil {
		page.Page = v
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil {
		page.Limit = v
	}
	return page
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var in ports.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	user, err := h.userService.Register(r.Context(), email, in)
	if err != nil {
		respondError(w, err)
		return
	}

	h.metrics.UsersRegistered.Inc()
	respondMessage(w, http.StatusCreated, "Registration successful", user)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Profile(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Profile retrieved", user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var upd domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), email, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Profile updated", user)
}

func (h *UserHandler) Role(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	role, err := h.userService.Role(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	status := domain.UserStatus(r.URL.Query().Get("status"))
	result, err := h.userService.ListUsers(r.Context(), email, status, parsePage(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.userService.SetRole(r.Context(), email, chi.URLParam(r, "id"), body.Role); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Role updated", nil)
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var body struct {
		Status domain.UserStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.userService.SetStatus(r.Context(), email, chi.URLParam(r, "id"), body.Status); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Status updated", nil)
}

// SearchDonors is public: no credential involved.
func (h *UserHandler) SearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.DonorFilter{
		BloodGroup: q.Get("bloodGroup"),
		District:   q.Get("district"),
		Upazila:    q.Get("upazila"),
	}

	result, err := h.userService.SearchDonors(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	stats, err := h.userService.Stats(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
