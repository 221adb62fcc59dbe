package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookcase/docs" // 注册Swagger文档
	"github.com/xiebiao/bookcase/internal/domain/account"
	"github.com/xiebiao/bookcase/internal/infrastructure/config"
	"github.com/xiebiao/bookcase/internal/interface/http/handler"
	"github.com/xiebiao/bookcase/internal/interface/http/middleware"
)

// Handlers 全部HTTP处理器（wire.Struct注入）
type Handlers struct {
	Account  *handler.AccountHandler
	Author   *handler.AuthorHandler
	Category *handler.CategoryHandler
	Book     *handler.BookHandler
	Item     *handler.ItemHandler
	Health   *handler.HealthHandler
}

// catalogRoutes 作者、分类、图书共用的路由
type catalogRoutes interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	NewData(c *gin.Context)
	Add(c *gin.Context)
	Update(c *gin.Context)
	Remove(c *gin.Context)
	Duplicate(c *gin.Context)
	MoveUp(c *gin.Context)
	MoveDown(c *gin.Context)
	UpdatePositions(c *gin.Context)
}

// New 创建并配置Gin引擎
// 中间件顺序：Recovery → Logger → Tracing → Metrics → RateLimit → 路由
// 读接口公开，写接口要求登录，newData要求ROLE_ADMIN
func New(cfg *config.Config, log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Tracing(),
		middleware.Metrics(),
	)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	requireAuth := auth.RequireAuth()
	requireAdmin := auth.RequireRole(string(account.RoleAdmin))

	accounts := v1.Group("/accounts")
	{
		accounts.POST("/register", h.Account.Register)
		accounts.POST("/login", h.Account.Login)
		accounts.POST("/refresh", h.Account.Refresh)
		accounts.POST("/logout", requireAuth, h.Account.Logout)
	}

	registerCatalog(v1.Group("/authors"), h.Author, requireAuth, requireAdmin)
	registerCatalog(v1.Group("/categories"), h.Category, requireAuth, requireAdmin)
	books := v1.Group("/books")
	registerCatalog(books, h.Book, requireAuth, requireAdmin)
	{
		books.GET("/:id/items", h.Item.ListByBook)
		books.PUT("/:id/items/add", requireAuth, h.Item.Add)
	}

	items := v1.Group("/items")
	{
		items.GET("/:id", h.Item.Get)

		items.POST("/update", requireAuth, h.Item.Update)
		items.DELETE("/remove", requireAuth, h.Item.Remove)
		items.POST("/duplicate", requireAuth, h.Item.Duplicate)
		items.POST("/moveUp", requireAuth, h.Item.MoveUp)
		items.POST("/moveDown", requireAuth, h.Item.MoveDown)
	}

	return r
}

func registerCatalog(g *gin.RouterGroup, h catalogRoutes, requireAuth, requireAdmin gin.HandlerFunc) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	g.POST("/new", requireAuth, requireAdmin, h.NewData)
	g.PUT("/add", requireAuth, h.Add)
	g.POST("/update", requireAuth, h.Update)
	g.DELETE("/remove", requireAuth, h.Remove)
	g.POST("/duplicate", requireAuth, h.Duplicate)
	g.POST("/moveUp", requireAuth, h.MoveUp)
	g.POST("/moveDown", requireAuth, h.MoveDown)
	g.POST("/updatePositions", requireAuth, h.UpdatePositions)
}
