// internal/handler/notification_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/repository"
)

type NotificationHandler struct {
	Repo repository.NotificationRepositoryInterface
}

// AddMany materializes pending notifications for a campaign, one per
// recipient id. Called by the orchestrator right after acquisition.
func (h *NotificationHandler) AddMany(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignID   int   `json:"campaign_id"`
		RecipientIDs []int `json:"recipients_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}

	notifications, err := h.Repo.AddMany(r.Context(), body.CampaignID, body.RecipientIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, notifications)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	notification, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

// RecordOutcome sets the delivery outcome for one (campaign, recipient)
// pair. The id path segment is the campaign id here.
func (h *NotificationHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipientID, ok := pathID(w, r, "recipientID")
	if !ok {
		return
	}

	var body struct {
		Status model.NotificationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if !body.Status.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "unknown notification status"})
		return
	}

	notification, err := h.Repo.RecordOutcome(r.Context(), campaignID, recipientID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

// Stats reports per-status notification counts for a campaign. The id path
// segment is the campaign id.
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.Repo.StatsByCampaign(r.Context(), campaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
