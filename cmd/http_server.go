package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bp848/mqdriven-sub004/internal"
	"github.com/bp848/mqdriven-sub004/internal/accounting"
	accountingPostgres "github.com/bp848/mqdriven-sub004/internal/accounting/postgres"
	"github.com/bp848/mqdriven-sub004/internal/application"
	applicationPostgres "github.com/bp848/mqdriven-sub004/internal/application/postgres"
	"github.com/bp848/mqdriven-sub004/internal/applicationcode"
	codePostgres "github.com/bp848/mqdriven-sub004/internal/applicationcode/postgres"
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	routePostgres "github.com/bp848/mqdriven-sub004/internal/approvalroute/postgres"
	"github.com/bp848/mqdriven-sub004/internal/auth"
	authPostgres "github.com/bp848/mqdriven-sub004/internal/auth/postgres"
	"github.com/bp848/mqdriven-sub004/internal/core/events"
	"github.com/bp848/mqdriven-sub004/internal/notification"
	"github.com/bp848/mqdriven-sub004/internal/ocr"
	"github.com/bp848/mqdriven-sub004/internal/transport/rest"
	"github.com/bp848/mqdriven-sub004/internal/transport/swagger"
	"github.com/bp848/mqdriven-sub004/internal/user"
	userPostgres "github.com/bp848/mqdriven-sub004/internal/user/postgres"
	"github.com/bp848/mqdriven-sub004/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	RBAC     *auth.RBACAuthorization
	Notifier *notification.Notifier
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, deps.Handlers, deps.RBAC, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Notifier.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	if _, err := swagger.LoadSpec("./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over pgx connection: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// Approval routes
	routeRepo := routePostgres.NewRouteRepository(gormDB)
	routeService := approvalroute.NewService(routeRepo, lg)
	routeHandler := approvalroute.NewHandler(routeService)

	// Application codes
	codeRepo := codePostgres.NewCodeRepository(gormDB)
	codeService := applicationcode.NewService(codeRepo, lg)
	codeHandler := applicationcode.NewHandler(codeService)

	// Applications
	appRepo := applicationPostgres.NewApplicationRepository(gormDB)
	appService := application.NewService(appRepo, routeService, eventBus, lg)
	appHandler := application.NewHandler(appService)

	// Accounting journal export, drafted from approval events
	journalRepo := accountingPostgres.NewJournalRepository(gormDB)
	accountingService := accounting.NewService(journalRepo, appRepo, codeService, lg)
	accountingHandler := accounting.NewHandler(accountingService)
	accounting.NewEventHandler(accountingService, lg).RegisterHandlers(eventBus)

	// Notification worker pool, fed by application lifecycle events
	notifier := notification.NewNotifier(notification.Config{
		RelayURL:     config.Notification.RelayURL,
		APIKey:       config.Notification.APIKey,
		FromAddress:  config.Notification.FromAddress,
		SendTimeout:  config.Notification.SendTimeout,
		MaxWorkers:   config.Notification.MaxWorkers,
		JobQueueSize: config.Notification.JobQueueSize,
	}, lg)
	notification.NewEventHandler(notifier, lg).RegisterHandlers(eventBus)

	// OCR intake
	ocrClient := ocr.NewClient(ocr.Config{
		APIURL:         config.OCR.APIURL,
		APIKey:         config.OCR.APIKey,
		Model:          config.OCR.Model,
		RequestTimeout: config.OCR.RequestTimeout,
	}, lg)
	ocrHandler := ocr.NewHandler(ocrClient)

	// Auth and users
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(auth.NewPermissionChecker(), lg)

	userService := user.NewService(userPostgres.NewUserRepository(db))
	userHandler := user.NewHandler(userService)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:            authHandler,
			User:            userHandler,
			Application:     appHandler,
			ApplicationCode: codeHandler,
			ApprovalRoute:   routeHandler,
			Accounting:      accountingHandler,
			OCR:             ocrHandler,
		},
		RBAC:     rbac,
		Notifier: notifier,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
