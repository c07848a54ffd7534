package commands

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tpv/database"
	"tpv/mailer"
	"tpv/realtime"
	"tpv/route"
	"tpv/service"
	"tpv/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const frontendPath = "./frontend/build"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := slog.Default()

	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET not set, tokens are signed with the built-in development key")
	}
	database.InitDatabase(cfg.DatabaseDSN)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.Info("running in debug mode")
	}

	hub := realtime.NewHub(logger)
	var publisher service.Publisher = hub
	if cfg.RabbitMQURL != "" {
		amqpPub, err := realtime.DialAMQP(cfg.RabbitMQURL, logger)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publisher = realtime.Multi{hub, amqpPub}
		logger.Info("publishing events to rabbitmq", "exchange", realtime.Exchange)
	}

	var reportMailer service.ReportMailer = mailer.Discard{Log: logger}
	if cfg.Mail.Enabled() {
		reportMailer = mailer.NewSMTP(cfg.Mail)
	} else {
		logger.Warn("EMAIL_USER/EMAIL_PASS not set, daily reports will not be mailed")
	}

	cash := service.NewCashService(database.DB, reportMailer)
	seeded, err := cash.EnsurePassword(ctx, cfg.ClosePassword)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("close password seeded from CLOSE_PASSWORD")
	}

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	route.TPVRoutes(router, route.Services{
		Orders:   service.NewOrderService(database.DB, publisher),
		Tables:   service.NewTableService(database.DB),
		Carts:    service.NewCartService(database.DB),
		Products: service.NewProductService(database.DB),
		Cash:     cash,
		Users:    service.NewUserService(database.DB),
		Hub:      hub,
		Log:      logger,
	})
	serveFrontend(router, logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("service_started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Printf("Failed to start server: %v", err)
		return err
	}
}

// serveFrontend serves the built React app; unknown paths fall back to index.html.
func serveFrontend(router *gin.Engine, logger *slog.Logger) {
	if _, err := os.Stat(frontendPath); os.IsNotExist(err) {
		logger.Warn("frontend build directory not found, static file serving may fail", "path", frontendPath)
	}
	router.StaticFS("/static", http.Dir(filepath.Join(frontendPath, "static")))
	router.NoRoute(func(c *gin.Context) {
		c.File(filepath.Join(frontendPath, "index.html"))
	})
}
