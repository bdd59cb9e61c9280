package http

import "net/http"

type healthHandler struct {
	service string
}

func (h *healthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": h.service})
}

func NewHealthHandler(service string) *healthHandler {
	return &healthHandler{service: service}
}
