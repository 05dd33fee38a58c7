package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/models"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) GetOrder(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	orderCode := chi.URLParam(req, "orderCode")

	order, err := h.storage.GetOrderByCode(req.Context(), orderCode)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			res.WriteHeader(http.StatusNotFound)
			return
		}

		zap.L().Info("error get order", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Other users' orders are indistinguishable from missing ones.
	if order.UserID != userID {
		res.WriteHeader(http.StatusNotFound)
		return
	}

	response := models.OrderResponse{
		OrderCode: order.Code,
		Status:    order.Status,
		PlanType:  string(order.PlanType),
	}

	if order.UpdatedAt != nil {
		response.UpdatedAt = order.UpdatedAt.UTC().Format(time.RFC3339)
	}

	writeJSON(res, http.StatusOK, response)
}
