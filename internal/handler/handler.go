package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/middleware"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"github.com/VladKvetkin/paywebhook/internal/webhook"
	"go.uber.org/zap"
)

type Handler struct {
	storage   storage.Storage
	processor *webhook.Processor
	now       func() time.Time
}

func NewHandler(storage storage.Storage, processor *webhook.Processor) *Handler {
	return &Handler{
		storage:   storage,
		processor: processor,
		now:       time.Now,
	}
}

func (h *Handler) getUserIDFromReqContext(req *http.Request) string {
	userID, _ := req.Context().Value(middleware.UserIDKey{}).(string)
	return userID
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)

	if err := json.NewEncoder(res).Encode(v); err != nil {
		zap.L().Info("cannot encode response JSON body", zap.Error(err))
	}
}
