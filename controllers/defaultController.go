package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Amexan API ❤️. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account

PRODUCT
- GET "/product" - Search products
- GET "/product/latest" - Latest products
- GET "/product/categories" - Product categories
- GET "/product/slug/:slug" - Get product by slug
- GET "/product/:id" - Get product by ID
- POST "/product" - Create new product (admin)
- PUT "/product/:id" - Update product (admin)
- DELETE "/product/:id" - Delete product (admin)
- POST "/product/:id/images" - Add product images (admin)

CART
- GET "/cart" - Get the current cart
- POST "/cart/items" - Add an item
- PATCH "/cart/items/:productId" - Change an item's quantity
- DELETE "/cart/items/:productId" - Remove an item

USER
- GET "/user/profile/address" - Get shipping address
- PUT "/user/profile/address" - Save shipping address
- PUT "/user/profile/payment-method" - Save payment method

ORDER
- POST "/order" - Place an order from the cart
- GET "/order/mine" - Orders of the current user
- GET "/order/:id" - Get order by ID
- POST "/order/:id/paypal" - Start a PayPal payment
- POST "/order/:id/paypal/approve" - Capture a PayPal payment

ADMIN
- GET "/admin/orders" - All orders
- GET "/admin/summary" - Sales summary
- PUT "/admin/orders/:id/paid" - Mark order paid (cash on delivery)
- PUT "/admin/orders/:id/delivered" - Mark order delivered
- DELETE "/admin/orders/:id" - Delete order`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
