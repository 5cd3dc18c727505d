package controllers

import (
	"net/http"

	"github.com/Kariqs/amexan-storefront/middlewares"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func (c *CartController) GetCart(ctx *gin.Context) {
	cart, err := c.carts.GetCart(ctx.Request.Context(), middlewares.CartOwner(ctx))
	if err != nil {
		handleServiceError(ctx, err, "Failed to fetch cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "cart": cart})
}

func (c *CartController) AddItem(ctx *gin.Context) {
	var input models.CartItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := c.carts.AddItem(ctx.Request.Context(), middlewares.CartOwner(ctx), input.ProductID, input.Qty)
	if err != nil {
		handleServiceError(ctx, err, "Failed to add item to cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Item added to cart", "cart": cart})
}

func (c *CartController) UpdateItem(ctx *gin.Context) {
	productID, ok := parseID(ctx, "productId")
	if !ok {
		return
	}
	var input models.CartQuantityInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := c.carts.UpdateQuantity(ctx.Request.Context(), middlewares.CartOwner(ctx), productID, input.Qty)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Cart updated", "cart": cart})
}

func (c *CartController) RemoveItem(ctx *gin.Context) {
	productID, ok := parseID(ctx, "productId")
	if !ok {
		return
	}

	cart, err := c.carts.RemoveItem(ctx.Request.Context(), middlewares.CartOwner(ctx), productID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to remove item from cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Item removed from cart", "cart": cart})
}
