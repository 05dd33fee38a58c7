package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/models"
	"github.com/VladKvetkin/paywebhook/internal/storage"
	"go.uber.org/zap"
)

func (h *Handler) GetPremium(res http.ResponseWriter, req *http.Request) {
	userID := h.getUserIDFromReqContext(req)
	if userID == "" {
		res.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.storage.GetUser(req.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			res.WriteHeader(http.StatusNotFound)
			return
		}

		zap.L().Info("error get user", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := models.PremiumResponse{
		IsPremium: user.IsPremium,
		Active:    user.PremiumActive(h.now()),
	}

	if user.PremiumPlan != nil {
		response.Plan = string(*user.PremiumPlan)
	}

	if user.PremiumStartDate != nil {
		response.StartDate = user.PremiumStartDate.UTC().Format(time.RFC3339)
	}

	if user.PremiumEndDate != nil {
		response.EndDate = user.PremiumEndDate.UTC().Format(time.RFC3339)
	}

	writeJSON(res, http.StatusOK, response)
}
