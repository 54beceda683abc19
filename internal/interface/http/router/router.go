package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/storefront/docs" // swagger文档注册
	"github.com/xiebiao/storefront/internal/app"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/interface/http/handler"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/response"
)

// slowRequest 超过该耗时的请求记为慢请求
const slowRequest = 3 * time.Second

// Handlers 所有HTTP处理器
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Stock    *handler.StockHandler
	Checkout *handler.CheckoutHandler
	Events   *handler.EventsHandler
}

// NewHandlers 由执行上下文创建处理器
func NewHandlers(c *app.Container) Handlers {
	return Handlers{
		Catalog:  handler.NewCatalogHandler(c.ListProducts, c.GetProduct),
		Cart:     handler.NewCartHandler(c.GetCart, c.AddItem, c.RemoveItem, c.UpdateItem),
		Stock:    handler.NewStockHandler(c.GetStock, c.ResetStock),
		Checkout: handler.NewCheckoutHandler(c.Quote, c.Pay),
		Events:   handler.NewEventsHandler(c.Hub, c.Config.Server.SSEHeartbeat),
	}
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Logger(logger, slowRequest),
		middleware.CORS(cfg.Server.CORSOrigins),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Swagger文档: http://localhost:8080/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", h.Catalog.ListProducts)
			products.GET("/:id", h.Catalog.GetProduct)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", h.Cart.GetCart)
			cart.POST("/items", h.Cart.AddItem)
			cart.PATCH("/items/:id", h.Cart.UpdateItem)
			cart.DELETE("/items/:id", h.Cart.RemoveItem)
		}

		stock := v1.Group("/stock")
		{
			stock.GET("", h.Stock.GetStock)
			stock.POST("/reset", h.Stock.ResetStock)
		}

		checkout := v1.Group("/checkout")
		{
			checkout.POST("", h.Checkout.Pay)
			checkout.POST("/quote", h.Checkout.Quote)
		}

		v1.GET("/events", h.Events.Stream)
	}

	return r
}

// FromContainer 组装完整的Gin引擎
func FromContainer(c *app.Container) *gin.Engine {
	return New(c.Config, c.Logger, NewHandlers(c))
}
