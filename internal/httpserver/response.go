package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/logger"
	"dots-marketplace/internal/pricing"
	cartsvc "dots-marketplace/internal/service/cart"
	"dots-marketplace/internal/service/checkout"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

type cartResponse struct {
	Cart    domain.Cart     `json:"cart"`
	Quote   *pricing.Totals `json:"quote,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

type productResponse struct {
	domain.Product
	Image string `json:"image,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	if p.Images == nil {
		p.Images = []string{}
	}
	return productResponse{Product: p, Image: p.PrimaryImage()}
}

type productPageResponse struct {
	Products   []productResponse    `json:"products"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Filters    domain.ProductFacets `json:"filters"`
}

type orderListResponse struct {
	Orders []domain.Order `json:"orders"`
	Count  int            `json:"count"`
}

// writeCartResult answers a cart mutation. A persistence failure still returns
// the computed cart, with a warning that it may not have been saved.
func writeCartResult(c *gin.Context, cart domain.Cart, err error) {
	if err == nil {
		c.JSON(http.StatusOK, cartResponse{Cart: cart})
		return
	}
	var opErr *cartsvc.OperationError
	if errors.As(err, &opErr) {
		logger.FromGin(c).Warn("cart change not persisted", zap.String("op", opErr.Op), zap.Error(opErr.Err))
		c.JSON(http.StatusOK, cartResponse{Cart: cart, Warning: opErr.Message()})
		return
	}
	writeDomainError(c, err)
}

// writeDomainError maps service errors onto status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidLine),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrEmptyCart):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case checkout.IsCheckoutError(err):
		logger.FromGin(c).Error("checkout failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to process checkout")
	default:
		logger.FromGin(c).Error("request failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
