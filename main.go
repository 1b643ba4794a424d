package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"release-service/config"
	"release-service/directory"
	"release-service/enhance"
	"release-service/handlers"
	"release-service/middleware"
	"release-service/rabbitmq"
	"release-service/service"
	"release-service/submit"
	"release-service/utils"
	"release-service/version"

	"github.com/apex/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const (
	EndPointHealth          = "/health"
	EndPointSessions        = "/sessions"
	EndPointSession         = "/sessions/:id"
	EndPointDirectory       = "/directory"
	EndPointDirectoryReload = "/directory/reload"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Infof("Starting %s %s...", version.ServiceName, version.Version)

	// The mysql directory source and sink share one connection pool.
	var db *sql.DB
	openDB := func() *sql.DB {
		if db != nil {
			return db
		}
		var err error
		db, err = utils.DBConnect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		return db
	}

	var source directory.Source
	switch cfg.DirectorySource {
	case "mysql":
		source = directory.NewMySQLSource(openDB())
	default:
		source = directory.NewSheetsSource(cfg)
	}

	var sink submit.Sink
	switch cfg.SubmitSink {
	case "mysql":
		sink = submit.NewMySQLSink(openDB())
	default:
		sink = submit.NewWebhookSink(cfg.WebhookURL)
	}

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			// Fan-out is optional; the service runs without it.
			log.Warnf("Failed to connect to RabbitMQ, fan-out disabled: %v", err)
			publisher = nil
		}
	}

	svc := service.New(cfg, source, sink, enhance.NewClient(cfg), publisher)
	svc.Start()

	router := setupRouter(cfg, svc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("HTTP server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if db != nil {
		db.Close()
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config, svc *service.Service) *gin.Engine {
	router := gin.Default()
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	h := handlers.New(svc)

	router.GET(EndPointHealth, func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": version.ServiceName,
			"version": version.Version,
		})
	})

	api := router.Group("/api/v3")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET(EndPointDirectory, h.Directory)
		api.POST(EndPointDirectoryReload, h.ReloadDirectory)

		api.POST(EndPointSessions, h.CreateSession)
		api.GET(EndPointSession, h.GetSession)

		api.POST(EndPointSession+"/team", h.AddTeamMember)
		api.PUT(EndPointSession+"/team/:index", h.SetTeamMember)
		api.DELETE(EndPointSession+"/team/:index", h.RemoveTeamMember)

		api.POST(EndPointSession+"/vehicles", h.AddVehicle)
		api.PUT(EndPointSession+"/vehicles/:index", h.SetVehicle)
		api.DELETE(EndPointSession+"/vehicles/:index", h.RemoveVehicle)

		api.PUT(EndPointSession+"/neighborhood", h.SetNeighborhood)
		api.PUT(EndPointSession+"/fields", h.SetField)

		api.POST(EndPointSession+"/photo", h.AttachPhoto)
		api.DELETE(EndPointSession+"/photo", h.RemovePhoto)

		api.GET(EndPointSession+"/summary", h.Summary)
		api.GET(EndPointSession+"/share-link", h.ShareLink)
		api.POST(EndPointSession+"/submit", h.Submit)

		enhanceGroup := api.Group("")
		enhanceGroup.Use(middleware.RateLimitMiddleware(cfg.EnhanceRatePerMinute, time.Minute))
		enhanceGroup.POST(EndPointSession+"/enhance", h.Enhance)
	}

	return router
}
