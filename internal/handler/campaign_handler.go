// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/repository"
)

type CampaignHandler struct {
	Repo repository.CampaignRepositoryInterface
}

type campaignBody struct {
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	LaunchDate time.Time `json:"launch_date"`
}

// validate rejects bad input at the boundary; the store itself does not
// re-check temporal ordering.
func (b *campaignBody) validate() string {
	if b.Name == "" {
		return "name must not be empty"
	}
	if !b.LaunchDate.After(time.Now()) {
		return "launch_date must be in the future"
	}
	return ""
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body campaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if detail := body.validate(); detail != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
		return
	}

	campaign := &model.Campaign{
		Name:       body.Name,
		Content:    body.Content,
		LaunchDate: body.LaunchDate,
	}
	if err := h.Repo.Create(r.Context(), campaign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	campaign, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body campaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if detail := body.validate(); detail != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
		return
	}

	campaign, err := h.Repo.Update(r.Context(), id, body.Name, body.Content, body.LaunchDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run launches a campaign immediately, outside the scheduled path.
func (h *CampaignHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	campaign, err := h.Repo.Run(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Acquire hands one eligible campaign to the calling worker.
func (h *CampaignHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Repo.Acquire(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Complete evaluates one campaign's notification outcomes.
func (h *CampaignHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	campaign, err := h.Repo.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// CompleteNext sweeps any running campaign with fully resolved notifications.
func (h *CampaignHandler) CompleteNext(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Repo.CompleteNext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid " + name})
		return 0, false
	}
	return id, true
}
