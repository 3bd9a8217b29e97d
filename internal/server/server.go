package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/internal/config"
	customerdomain "github.com/reguahq/regua/internal/customer/domain"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	notificationdomain "github.com/reguahq/regua/internal/notification/domain"
	"github.com/reguahq/regua/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	appStateSvc     appstatedomain.Service
	customerSvc     customerdomain.Service
	chargeSvc       chargedomain.Service
	dunningSvc      dunningdomain.Service
	notificationSvc notificationdomain.Service
	scheduler       *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AppStateSvc     appstatedomain.Service
	CustomerSvc     customerdomain.Service
	ChargeSvc       chargedomain.Service
	DunningSvc      dunningdomain.Service
	NotificationSvc notificationdomain.Service
	Scheduler       *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		appStateSvc:     p.AppStateSvc,
		customerSvc:     p.CustomerSvc,
		chargeSvc:       p.ChargeSvc,
		dunningSvc:      p.DunningSvc,
		notificationSvc: p.NotificationSvc,
		scheduler:       p.Scheduler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.OrgContext())

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)

	// -------- Charges --------
	api.GET("/charges", s.ListCharges)
	api.POST("/charges", s.CreateCharge)
	api.GET("/charges/stats", s.GetChargeStats)
	api.GET("/charges/:id", s.GetChargeByID)
	api.PATCH("/charges/:id/status", s.UpdateChargeStatus)

	// -------- Dunning rules & steps --------
	api.GET("/dunning/rules", s.ListDunningRules)
	api.POST("/dunning/rules", s.CreateDunningRule)
	api.PATCH("/dunning/rules/:id", s.UpdateDunningRule)
	api.GET("/dunning/rules/:id/steps", s.ListDunningSteps)
	api.POST("/dunning/rules/:id/steps", s.CreateDunningStep)
	api.PATCH("/dunning/steps/:id", s.UpdateDunningStep)

	// -------- Dunning run --------
	api.POST("/dunning/run", s.RunDunning)

	// -------- Notification ledger --------
	api.GET("/notifications", s.ListNotifications)

	// -------- App state / time simulation --------
	api.GET("/app-state", s.GetAppState)
	api.POST("/app-state/advance", s.AdvanceAppState)
	api.POST("/app-state/reset", s.ResetAppState)
}
