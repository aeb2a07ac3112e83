package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dots-marketplace/internal/domain"
)

type addItemRequest struct {
	ProductID     string               `json:"productId" binding:"required"`
	Quantity      *int                 `json:"quantity"`
	Customization domain.Customization `json:"customization"`
}

type updateItemRequest struct {
	ProductID     string               `json:"productId" binding:"required"`
	Quantity      *int                 `json:"quantity" binding:"required"`
	Customization domain.Customization `json:"customization"`
}

type removeItemRequest struct {
	ProductID     string               `json:"productId" binding:"required"`
	Customization domain.Customization `json:"customization"`
}

type shippingAddressRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Address1   string `json:"address1" binding:"required"`
	Address2   string `json:"address2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
}

func (r shippingAddressRequest) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:   r.FullName,
		Address1:   r.Address1,
		Address2:   r.Address2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

type quoteRequest struct {
	ShippingAddress shippingAddressRequest `json:"shippingAddress" binding:"required"`
}

func getCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cartResponse{Cart: svc.Get(c.Request.Context(), shopperFrom(c))})
	}
}

// addCartItemHandler prices the line from the catalog; clients only choose the
// product, quantity and customization.
func addCartItemHandler(svc cartService, products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		if qty <= 0 {
			writeDomainError(c, domain.ErrInvalidQuantity)
			return
		}

		line, err := products.CartLine(c.Request.Context(), req.ProductID, req.Customization)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		cart, err := svc.AddItem(c.Request.Context(), shopperFrom(c), line, qty)
		writeCartResult(c, cart, err)
	}
}

// resolveLineProductID maps a product key or id onto the catalog id stored on
// cart lines. Unknown products keep the raw id so delisted lines stay removable.
func resolveLineProductID(ctx context.Context, products productService, id string) (string, error) {
	p, err := products.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return id, nil
	}
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func updateCartItemHandler(svc cartService, products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		productID, err := resolveLineProductID(c.Request.Context(), products, req.ProductID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		cart, err := svc.UpdateItem(c.Request.Context(), shopperFrom(c), productID, *req.Quantity, req.Customization)
		writeCartResult(c, cart, err)
	}
}

func removeCartItemHandler(svc cartService, products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req removeItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		productID, err := resolveLineProductID(c.Request.Context(), products, req.ProductID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		cart, err := svc.RemoveItem(c.Request.Context(), shopperFrom(c), productID, req.Customization)
		writeCartResult(c, cart, err)
	}
}

func clearCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), shopperFrom(c))
		writeCartResult(c, cart, err)
	}
}

func quoteHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		cart := svc.Get(c.Request.Context(), shopperFrom(c))
		addr := req.ShippingAddress.toDomain()
		quote := svc.Quote(cart.Lines, &addr)
		c.JSON(http.StatusOK, cartResponse{Cart: cart, Quote: &quote})
	}
}
