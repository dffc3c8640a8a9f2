package handler

import (
	"mchat/backend/internal/auth"
	"mchat/backend/internal/chathub"
	"mchat/backend/internal/identity"
)

// Handler holds the dependencies shared by the HTTP endpoints.
type Handler struct {
	Hub      *chathub.Hub
	Auth     *auth.Service
	Identity identity.Provider
}

func NewHandler(hub *chathub.Hub, a *auth.Service, id identity.Provider) *Handler {
	return &Handler{Hub: hub, Auth: a, Identity: id}
}
