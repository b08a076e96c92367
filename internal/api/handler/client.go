package handler

import (
	"net/http"

	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/service"
)

type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

type createClientRequest struct {
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email"`
	Address  models.Address `json:"address"`
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.svc.Create(r.Context(), service.ClientInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
	})
	if err != nil {
		respondServiceError(w, r, "client", err)
		return
	}
	RespondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	client, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, "client", err)
		return
	}
	RespondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	page := intQuery(r, "page")
	pageSize := intQuery(r, "page_size")
	if pageSize > 200 {
		pageSize = 200
	}

	clients, err := h.svc.List(r.Context(), page, pageSize)
	if err != nil {
		respondServiceError(w, r, "client", err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"clients": clients, "page": max(page, 1)})
}
