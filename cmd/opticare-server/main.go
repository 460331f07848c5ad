package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opticare/opticare/internal/config"
	"github.com/opticare/opticare/internal/domain/dropdown"
	"github.com/opticare/opticare/internal/domain/inventory"
	"github.com/opticare/opticare/internal/domain/lab"
	"github.com/opticare/opticare/internal/domain/operation"
	"github.com/opticare/opticare/internal/domain/patient"
	"github.com/opticare/opticare/internal/domain/prescription"
	"github.com/opticare/opticare/internal/domain/staff"
	"github.com/opticare/opticare/internal/platform/analytics"
	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/internal/platform/cache"
	"github.com/opticare/opticare/internal/platform/db"
	"github.com/opticare/opticare/internal/platform/export"
	"github.com/opticare/opticare/internal/platform/metrics"
	"github.com/opticare/opticare/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opticare-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(staffCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			if name == "" {
				name = username
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := staff.NewService(staff.NewRepoPG(pool),
				[]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
			account := &staff.Staff{Username: username, Name: name, Admin: true}
			if err := svc.Create(ctx, account, password); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("Created administrator %q (%s)\n", username, account.ID)
			return nil
		},
	}
	createAdminCmd.Flags().String("username", "", "Login username")
	createAdminCmd.Flags().String("name", "", "Display name (defaults to username)")
	createAdminCmd.Flags().String("password", "", "Initial password")
	cmd.AddCommand(createAdminCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	reportCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer reportCache.Close()
	if reportCache != nil {
		logger.Info().Msg("analytics cache enabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.HTTPMetrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with dev sessions; every request is admin")
		e.Use(auth.DevMiddleware())
	} else {
		e.Use(auth.Middleware([]byte(cfg.JWTSecret)))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/metrics", metrics.Handler())

	apiV1 := e.Group("/api/v1")

	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	prescriptionSvc := prescription.NewService(prescription.NewRepoPG(pool))
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)

	operationSvc := operation.NewService(operation.NewRepoPG(pool))
	operation.NewHandler(operationSvc).RegisterRoutes(apiV1)

	inventorySvc := inventory.NewService(
		inventory.NewMedicineRepoPG(pool),
		inventory.NewOpticalRepoPG(pool),
		inventory.NewDispenseRepoPG(pool),
		txRunner,
	)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)

	labSvc := lab.NewService(lab.NewRepoPG(pool))
	lab.NewHandler(labSvc).RegisterRoutes(apiV1)

	staffSvc := staff.NewService(staff.NewRepoPG(pool),
		[]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
	staff.NewHandler(staffSvc).RegisterRoutes(apiV1)

	dropdownSvc := dropdown.NewService(dropdown.NewRepoPG(pool))
	dropdown.NewHandler(dropdownSvc).RegisterRoutes(apiV1)

	aggregator := analytics.NewAggregator(analytics.NewSourcePG(pool), logger)
	analytics.NewHandler(aggregator, reportCache, logger).RegisterRoutes(apiV1)

	exporter := export.NewExporter(cfg.ExportDir)
	export.NewHandler(exporter, aggregator, patientSvc, prescriptionSvc, inventorySvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
