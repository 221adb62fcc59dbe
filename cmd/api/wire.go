//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码（wire_gen.go）
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appaccount "github.com/xiebiao/bookcase/internal/application/account"
	"github.com/xiebiao/bookcase/internal/application/catalog"
	"github.com/xiebiao/bookcase/internal/domain/account"
	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/internal/infrastructure/config"
	"github.com/xiebiao/bookcase/internal/infrastructure/persistence/mysql"
	redisstore "github.com/xiebiao/bookcase/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcase/internal/interface/http/handler"
	"github.com/xiebiao/bookcase/internal/interface/http/middleware"
	"github.com/xiebiao/bookcase/internal/interface/http/router"
	"github.com/xiebiao/bookcase/pkg/mq"
)

// infrastructureSet 基础设施层依赖
// 包含：数据库连接、Redis连接、列表缓存、事务管理器、消息发布
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideCache,
	providePublisher,
	mysql.NewTxManager,
	wire.Bind(new(movable.Transactor), new(*mysql.TxManager)),
	wire.Bind(new(catalog.EventPublisher), new(mq.Publisher)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewAuthorRepository,
	mysql.NewCategoryRepository,
	mysql.NewBookRepository,
	mysql.NewAccountRepository,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	author.NewService,
	category.NewService,
	book.NewService,
	account.NewService,
)

// applicationSet 应用层依赖
// 包含：校验器、映射器、门面、账号用例
var applicationSet = wire.NewSet(
	catalog.NewAuthorValidator,
	catalog.NewCategoryValidator,
	catalog.NewBookValidator,
	catalog.NewItemValidator,
	catalog.NewBookMapper,
	catalog.NewAuthorFacade,
	catalog.NewCategoryFacade,
	catalog.NewBookFacade,
	catalog.NewItemFacade,
	appaccount.NewRegisterUseCase,
	appaccount.NewLoginUseCase,
	appaccount.NewLogoutUseCase,
	appaccount.NewRefreshUseCase,
)

// middlewareSet 认证相关依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	wire.Bind(new(appaccount.SessionStore), new(*redisstore.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redisstore.SessionStore)),
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器与路由
var handlerSet = wire.NewSet(
	handler.NewAccountHandler,
	handler.NewAuthorHandler,
	handler.NewCategoryHandler,
	handler.NewBookHandler,
	handler.NewItemHandler,
	handler.NewHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	wire.Struct(new(App), "*"),
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭消息发布者、Redis、MySQL
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
	)
	return nil, nil, nil
}
