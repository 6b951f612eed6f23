package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/api/validate"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

// idParam names the internal document id on update and delete routes.
const idParam = "id"

type PhlebotomistHandler struct {
	svc *services.PhlebotomistService
	log zerolog.Logger
}

func NewPhlebotomistHandler(svc *services.PhlebotomistService, log zerolog.Logger) *PhlebotomistHandler {
	return &PhlebotomistHandler{svc: svc, log: log}
}

// List handles GET /get-all-phlebotomist.
func (h *PhlebotomistHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), query.ParseParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Add handles POST /add-phlebotomist.
func (h *PhlebotomistHandler) Add(w http.ResponseWriter, r *http.Request) {
	doc, err := validate.Object(r.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	f, err := validate.PhlebotomistFields(doc)
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

// Update handles PATCH /update-phlebotomist?id=.
func (h *PhlebotomistHandler) Update(w http.ResponseWriter, r *http.Request) {
	doc, err := validate.Object(r.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	f, err := validate.PhlebotomistFields(doc)
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

// Delete handles DELETE /delete-phlebotomist?id=.
func (h *PhlebotomistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Delete(r.Context(), r.URL.Query().Get(idParam))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
