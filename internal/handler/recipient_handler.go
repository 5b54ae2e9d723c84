// internal/handler/recipient_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/repository"
)

type RecipientHandler struct {
	Repo repository.RecipientRepositoryInterface
}

type recipientBody struct {
	Name         string `json:"name"`
	Lastname     string `json:"lastname"`
	Age          int    `json:"age"`
	ContactEmail string `json:"contact_email"`
}

func (b *recipientBody) validate() string {
	if b.Name == "" {
		return "name must not be empty"
	}
	if b.Age < 0 {
		return "age must not be negative"
	}
	if !strings.Contains(b.ContactEmail, "@") {
		return "contact_email must be a valid email address"
	}
	return ""
}

func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body recipientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if detail := body.validate(); detail != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
		return
	}

	recipient := &model.Recipient{
		Name:         body.Name,
		Lastname:     body.Lastname,
		Age:          body.Age,
		ContactEmail: body.ContactEmail,
	}
	if err := h.Repo.Create(r.Context(), recipient); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipient)
}

func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.Repo.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipients)
}

func (h *RecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipient, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body recipientBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if detail := body.validate(); detail != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
		return
	}

	recipient := &model.Recipient{
		ID:           id,
		Name:         body.Name,
		Lastname:     body.Lastname,
		Age:          body.Age,
		ContactEmail: body.ContactEmail,
	}
	if err := h.Repo.Update(r.Context(), recipient); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
