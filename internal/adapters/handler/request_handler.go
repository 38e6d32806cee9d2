package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/adapters/metrics"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type RequestHandler struct {
	requestService ports.RequestService
	metrics        *metrics.Metrics
}

func NewRequestHandler(requests ports.RequestService, m *metrics.Metrics) *RequestHandler {
	return &RequestHandler{requestService: requests, metrics: m}
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var in ports.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	req, err := h.requestService.Create(r.Context(), email, in)
	if err != nil {
		respondError(w, err)
		return
	}

	h.metrics.RequestsCreated.Inc()
	respondMessage(w, http.StatusCreated, "Donation request created", req)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	req, err := h.requestService.Get(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Donation request retrieved", req)
}

func (h *RequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	status := domain.RequestStatus(r.URL.Query().Get("status"))
	result, err := h.requestService.ListAll(r.Context(), email, status, parsePage(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	status := domain.RequestStatus(r.URL.Query().Get("status"))
	result, err := h.requestService.ListMine(r.Context(), email, status, parsePage(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListPending serves the public board of open requests.
func (h *RequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	result, err := h.requestService.ListPending(r.Context(), parsePage(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var upd domain.RequestUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.requestService.Update(r.Context(), email, chi.URLParam(r, "id"), upd); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Donation request updated", nil)
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	if err := h.requestService.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Donation request deleted", nil)
}

func (h *RequestHandler) Donate(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	// Body is optional; donorName defaults to the caller's profile name.
	var body struct {
		DonorName string `json:"donorName"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	req, err := h.requestService.Donate(r.Context(), email, chi.URLParam(r, "id"), body.DonorName)
	if err != nil {
		respondError(w, err)
		return
	}

	h.metrics.RequestsClaimed.Inc()
	respondMessage(w, http.StatusOK, "Donation request claimed", req)
}

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var body struct {
		Status domain.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.requestService.UpdateStatus(r.Context(), email, chi.URLParam(r, "id"), body.Status); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Status updated", nil)
}
