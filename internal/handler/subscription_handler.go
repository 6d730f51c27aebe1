package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/service"
)

// SubscriptionHandler manages subscriptions and notification preferences
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// List returns the current user's subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	subscriptions, err := h.subscriptionService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscriptions)
}

// Subscribe adds a subscription to a company or indicator
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.subscriptionService.Subscribe(c.Request.Context(), userID,
		domain.SubscriptionTarget(req.TargetType), req.TargetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{Message: "subscription added"})
}

// Unsubscribe removes a subscription
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID,
		domain.SubscriptionTarget(c.Param("targetType")), c.Param("targetId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "subscription removed"})
}

// GetSettings returns the current user's notification preferences
func (h *SubscriptionHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	settings, err := h.subscriptionService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings saves the current user's notification preferences
func (h *SubscriptionHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			ErrorCode: dto.CodeInvalidToken,
			Message:   "authentication required",
		})
		return
	}

	var req dto.NotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	settings, err := h.subscriptionService.UpdateSettings(c.Request.Context(), userID, *req.EmailEnabled, *req.DigestHour)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
