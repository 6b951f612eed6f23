package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/api/validate"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

type SampleHandler struct {
	svc *services.SampleService
	log zerolog.Logger
}

func NewSampleHandler(svc *services.SampleService, log zerolog.Logger) *SampleHandler {
	return &SampleHandler{svc: svc, log: log}
}

// Overview handles GET /overview: every sample, unpaged.
func (h *SampleHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Overview(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// List handles GET /get-all-sample.
func (h *SampleHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), query.ParseParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Add handles POST /add-sample.
func (h *SampleHandler) Add(w http.ResponseWriter, r *http.Request) {
	doc, err := validate.Object(r.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	f, err := validate.SampleFields(doc)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out, err := h.svc.Add(r.Context(), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// Update handles PATCH /update-sample?id=.
func (h *SampleHandler) Update(w http.ResponseWriter, r *http.Request) {
	doc, err := validate.Object(r.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	f, err := validate.SampleFields(doc)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out, err := h.svc.Update(r.Context(), r.URL.Query().Get(idParam), f)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /delete-sample?id=.
func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Delete(r.Context(), r.URL.Query().Get(idParam))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
