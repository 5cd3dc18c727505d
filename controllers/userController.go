package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

func (c *UserController) GetAddress(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	user, err := c.auth.GetUser(ctx.Request.Context(), identity.UserID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to fetch address")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "address": user.Address.Data()})
}

func (c *UserController) UpdateAddress(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var address models.ShippingAddress
	if err := ctx.ShouldBindJSON(&address); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := c.auth.UpdateAddress(ctx.Request.Context(), identity.UserID, address)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update address")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"address": user.Address.Data(),
	})
}

func (c *UserController) UpdatePaymentMethod(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var input struct {
		Type string `json:"type" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := c.auth.UpdatePaymentMethod(ctx.Request.Context(), identity.UserID, input.Type)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update payment method")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success":       true,
		"message":       "User updated successfully",
		"paymentMethod": user.PaymentMethod,
	})
}
