package controllers

import (
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-storefront/middlewares"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	return page, limit
}

func pageMetadata[T any](p *services.Page[T]) gin.H {
	return gin.H{
		"total":       p.Total,
		"currentPage": p.Page,
		"totalPages":  p.TotalPages,
		"hasPrevPage": p.Page > 1,
		"hasNextPage": p.TotalPages > p.Page,
	}
}

func (c *OrderController) CreateOrder(ctx *gin.Context) {
	order, err := c.orders.CreateOrder(ctx.Request.Context(), middlewares.CartOwner(ctx))
	if err != nil {
		handleServiceError(ctx, err, "Failed to create order")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Order created",
		"redirectTo": "/order/" + strconv.FormatUint(uint64(order.ID), 10),
		"order":      order,
	})
}

func (c *OrderController) GetMyOrders(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	page, limit := pagination(ctx)
	orders, err := c.orders.ListUserOrders(ctx.Request.Context(), identity.UserID, page, limit)
	if err != nil {
		handleServiceError(ctx, err, "Failed to fetch orders.")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders.Data, "metadata": pageMetadata(orders)})
}

// GetOrder returns an order to its owner or to an admin.
func (c *OrderController) GetOrder(ctx *gin.Context) {
	order, ok := c.ownedOrder(ctx)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

func (c *OrderController) CreatePayPalOrder(ctx *gin.Context) {
	order, ok := c.ownedOrder(ctx)
	if !ok {
		return
	}

	remoteID, err := c.orders.CreatePayPalOrder(ctx.Request.Context(), order.ID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to create PayPal order")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"message": "Item order created successfully",
		"data":    remoteID,
	})
}

func (c *OrderController) ApprovePayPalOrder(ctx *gin.Context) {
	order, ok := c.ownedOrder(ctx)
	if !ok {
		return
	}
	var approval models.PayPalApproval
	if err := ctx.ShouldBindJSON(&approval); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	paid, err := c.orders.ApprovePayPalOrder(ctx.Request.Context(), order.ID, approval.OrderID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to approve PayPal order")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"message": "Your order has been paid",
		"order":   paid,
	})
}

func (c *OrderController) ListOrders(ctx *gin.Context) {
	page, limit := pagination(ctx)
	orders, err := c.orders.ListOrders(ctx.Request.Context(), ctx.Query("query"), page, limit)
	if err != nil {
		handleServiceError(ctx, err, "Unable to fetch orders")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders.Data, "metadata": pageMetadata(orders)})
}

func (c *OrderController) Summary(ctx *gin.Context) {
	summary, err := c.orders.Summary(ctx.Request.Context())
	if err != nil {
		handleServiceError(ctx, err, "Unable to fetch order summary")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"summary": summary})
}

// MarkPaid records a cash on delivery payment.
func (c *OrderController) MarkPaid(ctx *gin.Context) {
	orderID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	order, err := c.orders.MarkPaidCashOnDelivery(ctx.Request.Context(), orderID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update order")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Order marked as paid", "order": order})
}

func (c *OrderController) MarkDelivered(ctx *gin.Context) {
	orderID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	order, err := c.orders.MarkDelivered(ctx.Request.Context(), orderID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to update order")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Order has been marked delivered", "order": order})
}

func (c *OrderController) DeleteOrder(ctx *gin.Context) {
	orderID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.orders.DeleteOrder(ctx.Request.Context(), orderID); err != nil {
		handleServiceError(ctx, err, "Failed to delete order.")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": "Order deleted successfully."})
}

func (c *OrderController) ownedOrder(ctx *gin.Context) (*models.Order, bool) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return nil, false
	}
	orderID, ok := parseID(ctx, "id")
	if !ok {
		return nil, false
	}

	order, err := c.orders.GetOrderByID(ctx.Request.Context(), orderID)
	if err != nil {
		handleServiceError(ctx, err, "Failed to fetch order.")
		return nil, false
	}
	if order.UserID != identity.UserID && !identity.IsAdmin() {
		// hide other users' orders
		handleServiceError(ctx, services.ErrOrderNotFound, "")
		return nil, false
	}
	return order, true
}
