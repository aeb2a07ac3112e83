package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dots-marketplace/internal/domain"
)

type checkoutRequest struct {
	ShippingAddress shippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// checkoutHandler charges the totals quoted for the destination, the same figures
// POST /cart/quote shows the shopper.
func checkoutHandler(carts cartService, processor checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.PaymentMethod) == "" {
			writeError(c, http.StatusBadRequest, "paymentMethod required")
			return
		}

		ctx := c.Request.Context()
		shopper := shopperFrom(c)
		cart := carts.Get(ctx, shopper)
		if cart.IsEmpty() {
			writeDomainError(c, domain.ErrEmptyCart)
			return
		}

		addr := req.ShippingAddress.toDomain()
		quote := carts.Quote(cart.Lines, &addr)
		cart.Subtotal = quote.Subtotal
		cart.Shipping = quote.Shipping
		cart.Tax = quote.Tax
		cart.Total = quote.Total
		cart.ItemCount = quote.ItemCount

		order, err := processor.Checkout(ctx, shopper, cart, addr, req.PaymentMethod)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders := svc.All(c.Request.Context(), shopperFrom(c))
		c.JSON(http.StatusOK, orderListResponse{Orders: orders, Count: len(orders)})
	}
}

func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), shopperFrom(c), c.Param("id"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func advanceOrderStatusHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		order, err := svc.AdvanceStatus(c.Request.Context(), shopperFrom(c), c.Param("id"), req.Status)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
