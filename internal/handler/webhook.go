package handler

import (
	"io"
	"net/http"

	"github.com/VladKvetkin/paywebhook/internal/webhook"
	"go.uber.org/zap"
)

const webhookBodyLimit = 1024 * 1024

// PaymentWebhook always answers 200: the gateway keeps retrying anything else.
func (h *Handler) PaymentWebhook(res http.ResponseWriter, req *http.Request) {
	callback := webhook.Callback{Method: req.Method}

	if req.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(res, req.Body, webhookBodyLimit))
		if err != nil {
			zap.L().Info("cannot read webhook body", zap.Error(err))
		}

		callback.Body = body
	}

	ack := h.processor.Process(req.Context(), callback)

	writeJSON(res, http.StatusOK, ack)
}
