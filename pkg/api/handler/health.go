package handler

import (
	"net/http"

	"github.com/thirdwheel/companion-backend/pkg/api/response"
)

type health struct {
	writer response.JSONResponseWriter
}

func NewHealth() *health {
	return &health{writer: response.JSONResponseWriter{}}
}

func (h *health) Check(w http.ResponseWriter, r *http.Request) {
	h.writer.WriteSuccessResponse(w, map[string]string{"status": "ok"})
}
