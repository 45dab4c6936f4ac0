package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	authsvc "storefront/internal/service/auth"
	ordersvc "storefront/internal/service/order"
)

type authService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, string, error)
	Authenticate(ctx context.Context, token string) (*authsvc.Claims, error)
}

type productService interface {
	List(ctx context.Context, search, ordering string) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]domain.Product, error)
	Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, sellerID, id int64, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, sellerID, id int64) error
}

type orderService interface {
	Create(ctx context.Context, userID int64, items []ordersvc.ItemInput) (*domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
	Delete(ctx context.Context, userID, orderID int64) error
	SalesSummary(ctx context.Context, sellerID int64) (*domain.SalesSummary, error)
	SalesOrders(ctx context.Context, sellerID int64) ([]domain.SaleOrder, error)
}

// Deps are the services the handlers call.
type Deps struct {
	AuthSvc    authService
	ProductSvc productService
	OrderSvc   orderService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.ProductSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), requestIDMiddleware())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  corsOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", headerRequestID},
			ExposeHeaders: []string{headerRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	users := api.Group("/users")
	users.POST("/register/", registerHandler(deps.AuthSvc, logger))
	users.POST("/login/", loginHandler(deps.AuthSvc, logger))

	api.GET("/products/", listProductsHandler(deps.ProductSvc, logger))
	api.GET("/products/:id/", getProductHandler(deps.ProductSvc, logger))

	seller := api.Group("/products/seller", authMiddleware(deps.AuthSvc), requireSeller())
	seller.GET("/", sellerProductsHandler(deps.ProductSvc, logger))
	seller.POST("/", createProductHandler(deps.ProductSvc, logger))
	seller.GET("/sales-summary/", salesSummaryHandler(deps.OrderSvc, logger))
	seller.GET("/sales-orders/", salesOrdersHandler(deps.OrderSvc, logger))
	seller.PUT("/:id/", updateProductHandler(deps.ProductSvc, logger))
	seller.DELETE("/:id/", deleteProductHandler(deps.ProductSvc, logger))

	orders := api.Group("/orders", authMiddleware(deps.AuthSvc))
	orders.GET("/", listOrdersHandler(deps.OrderSvc, logger))
	orders.POST("/", createOrderHandler(deps.OrderSvc, logger))
	orders.DELETE("/:id/", deleteOrderHandler(deps.OrderSvc, logger))

	return router, nil
}
