package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/communityhub/goldledger/docs"
	v1 "github.com/communityhub/goldledger/internal/api/handler/v1"
	"github.com/communityhub/goldledger/internal/api/middleware"
	"github.com/communityhub/goldledger/internal/cache"
	"github.com/communityhub/goldledger/internal/config"
	"github.com/communityhub/goldledger/internal/metrics"
	"github.com/communityhub/goldledger/internal/repository"
	"github.com/communityhub/goldledger/internal/repository/dao"
	"github.com/communityhub/goldledger/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Metrics *metrics.Metrics
}

type repositories struct {
	users    *repository.UserRepository
	programs *repository.ProgramRepository
	lots     *repository.LotRepository
	ledger   *repository.LedgerRepository
}

// NewServer wires every layer on top of db. rdb may be nil, which disables
// the program cache.
func NewServer(conf *config.AppConfig, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Metrics: m,
	}

	s.MountMiddlewares()

	repos := repositories{
		users:    repository.NewUserRepository(dao.NewUserDAO(db)),
		programs: repository.NewProgramRepository(dao.NewProgramDAO(db)),
		lots:     repository.NewLotRepository(dao.NewLotDAO(db)),
		ledger:   repository.NewLedgerRepository(dao.NewLedgerDAO(db)),
	}

	userHandler := s.initUserHandler(repos)
	programHandler := s.initProgramHandler(repos, rdb)
	lotHandler := s.initLotHandler(repos)
	ledgerHandler := s.initLedgerHandler(repos)
	s.MountHandlers(userHandler, programHandler, lotHandler, ledgerHandler)

	return s
}

func (s *Server) initUserHandler(repos repositories) *v1.UserHandler {
	svc := service.NewUserService(repos.users)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initProgramHandler(repos repositories, rdb *redis.Client) *v1.ProgramHandler {
	ttl := 5 * time.Minute
	if s.Config.Redis != nil && s.Config.Redis.TTL > 0 {
		ttl = s.Config.Redis.TTL
	}
	programCache := cache.NewProgramCache(rdb, ttl)

	svc := service.NewProgramService(repos.programs, repos.ledger, programCache, s.Metrics)
	handler := v1.NewProgramHandler(svc)

	return handler
}

func (s *Server) initLotHandler(repos repositories) *v1.LotHandler {
	svc := service.NewLotService(repos.lots, repos.programs, repos.programs, repos.users)
	handler := v1.NewLotHandler(svc)

	return handler
}

func (s *Server) initLedgerHandler(repos repositories) *v1.LedgerHandler {
	svc := service.NewLedgerService(repos.ledger, repos.programs, s.Metrics)
	handler := v1.NewLedgerHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.Metrics(s.Metrics))
}

func (s *Server) MountHandlers(userHandler *v1.UserHandler, programHandler *v1.ProgramHandler, lotHandler *v1.LotHandler, ledgerHandler *v1.LedgerHandler) {
	const basePath = "/api/v1"

	var guards []gin.HandlerFunc
	if s.Config.API.AuthEnabled {
		guards = append(guards, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	}

	admin := s.Router.Group(basePath, guards...)
	{
		admin.POST("/users", userHandler.HandleRegisterUser)
		admin.GET("/users", userHandler.HandleListUsers)
		admin.GET("/users/:userId", userHandler.HandleGetUser)

		admin.POST("/programs", programHandler.HandleCreateProgram)
		admin.GET("/programs", programHandler.HandleListPrograms)
		admin.GET("/programs/:programId", programHandler.HandleGetProgram)
		admin.PATCH("/programs/:programId/status", programHandler.HandleToggleProgramStatus)
		admin.POST("/programs/:programId/start-cycle", programHandler.HandleStartCycle)
		admin.POST("/programs/:programId/end-cycle", programHandler.HandleEndCycle)
		admin.GET("/programs/:programId/cycles", programHandler.HandleGetProgramCycles)
		admin.GET("/cycles/:cycleId", programHandler.HandleGetCycle)

		admin.POST("/lots", lotHandler.HandleAddLot)
		admin.GET("/lots/:lotId", lotHandler.HandleGetLot)
		admin.PATCH("/lots/:lotId/status", lotHandler.HandleToggleLotStatus)
		admin.GET("/cycles/:cycleId/lots", lotHandler.HandleGetCycleLots)

		admin.POST("/monthly-data", ledgerHandler.HandleCreateMonthlyData)
		admin.GET("/cycles/:cycleId/monthly-data", ledgerHandler.HandleGetCycleMonthlyData)
		admin.GET("/monthly-data/:monthlyDataId", ledgerHandler.HandleGetMonthlyData)
		admin.PUT("/monthly-data/:monthlyDataId/payments", ledgerHandler.HandleRecordPayments)
		admin.GET("/monthly-data/:monthlyDataId/payments", ledgerHandler.HandleGetPayments)
		admin.GET("/monthly-data/:monthlyDataId/payments/export", ledgerHandler.HandleExportPayments)
		admin.GET("/monthly-data/:monthlyDataId/winners", ledgerHandler.HandleGetWinners)

		admin.POST("/winners", ledgerHandler.HandleAddWinners)
		admin.DELETE("/winners/:winnerId", ledgerHandler.HandleRemoveWinner)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Gold Program Ledger API"
	docs.SwaggerInfo.Description = "Programs, cycles, lots, monthly payments and winners of the gold pooling scheme."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
