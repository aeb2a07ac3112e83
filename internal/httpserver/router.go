package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
	"dots-marketplace/internal/logger"
	"dots-marketplace/internal/pricing"
	sessionrepo "dots-marketplace/internal/repository/session"
)

type productService interface {
	Search(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Recommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error)
	CartLine(ctx context.Context, productID string, c domain.Customization) (domain.CartLine, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context, shopper string) domain.Cart
	AddItem(ctx context.Context, shopper string, line domain.CartLine, quantity int) (domain.Cart, error)
	UpdateItem(ctx context.Context, shopper, productID string, quantity int, c domain.Customization) (domain.Cart, error)
	RemoveItem(ctx context.Context, shopper, productID string, c domain.Customization) (domain.Cart, error)
	Clear(ctx context.Context, shopper string) (domain.Cart, error)
	Quote(lines []domain.CartLine, addr *domain.ShippingAddress) pricing.Totals
}

type checkoutService interface {
	Checkout(ctx context.Context, shopper string, cart domain.Cart, addr domain.ShippingAddress, paymentMethod string) (domain.Order, error)
}

type orderService interface {
	All(ctx context.Context, shopper string) []domain.Order
	Get(ctx context.Context, shopper, orderID string) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, shopper, orderID string, next domain.OrderStatus) (*domain.Order, error)
}

type sessionService interface {
	Issue(ctx context.Context) (sessionrepo.Session, error)
	Resolve(ctx context.Context, token string) (string, error)
	TTLSeconds() int
}

// Deps groups the services the router needs.
type Deps struct {
	ProductSvc  productService
	CategorySvc categoryService
	CartSvc     cartService
	CheckoutSvc checkoutService
	OrderSvc    orderService
	SessionSvc  sessionService
	ReadyChecks map[string]ReadyCheck
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.ProductSvc == nil:
		return errors.New("product service required")
	case d.CategorySvc == nil:
		return errors.New("category service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.SessionSvc == nil:
		return errors.New("session service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	router := gin.New()
	router.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))

	router.POST("/sessions", createSessionHandler(deps.SessionSvc))
	router.GET("/products", listProductsHandler(deps.ProductSvc))
	router.GET("/products/:id", getProductHandler(deps.ProductSvc))
	router.GET("/products/:id/recommendations", recommendationsHandler(deps.ProductSvc))
	router.GET("/categories", listCategoriesHandler(deps.CategorySvc))

	shopper := router.Group("/", shopperMiddleware(deps.SessionSvc))
	shopper.GET("/cart", getCartHandler(deps.CartSvc))
	shopper.POST("/cart/items", addCartItemHandler(deps.CartSvc, deps.ProductSvc))
	shopper.PATCH("/cart/items", updateCartItemHandler(deps.CartSvc, deps.ProductSvc))
	shopper.DELETE("/cart/items", removeCartItemHandler(deps.CartSvc, deps.ProductSvc))
	shopper.DELETE("/cart", clearCartHandler(deps.CartSvc))
	shopper.POST("/cart/quote", quoteHandler(deps.CartSvc))
	shopper.POST("/checkout", checkoutHandler(deps.CartSvc, deps.CheckoutSvc))
	shopper.GET("/orders", listOrdersHandler(deps.OrderSvc))
	shopper.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	shopper.POST("/orders/:id/status", advanceOrderStatusHandler(deps.OrderSvc))

	return router, nil
}
