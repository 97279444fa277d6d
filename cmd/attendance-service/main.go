package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/events"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/handler"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/config"
	"github.com/chronotrack/chronotrack-backend/pkg/database"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
	"github.com/chronotrack/chronotrack-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("attendance-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("attendance-service", cfg.Server.Environment)
	log.Info().Msg("starting Attendance Service")

	loc, err := cfg.Schedule.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid schedule timezone")
	}

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	basePublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAttendanceEvents, "attendance-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := events.NewAttendanceEventPublisher(basePublisher, log)

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)

	// Initialize services
	auditTrail := service.NewAuditTrail(auditRepo, cfg.Audit.Strict, log)
	ruleService := service.NewRuleService(ruleRepo, employeeRepo, departmentRepo, auditTrail, log)
	ledgerService := service.NewLedgerService(recordRepo, employeeRepo, ruleService, auditTrail, publisher, loc, log)
	lifecycleService := service.NewLifecycleService(employeeRepo, recordRepo, ruleService, ledgerService, publisher, loc, log)
	employeeService := service.NewEmployeeService(employeeRepo, departmentRepo, ruleRepo, auditTrail, publisher, log)
	departmentService := service.NewDepartmentService(departmentRepo, ruleRepo, auditTrail, log)
	leaveService := service.NewLeaveService(leaveRepo, employeeRepo, auditTrail, publisher, log)

	// Initialize handlers
	punchHandler := handler.NewPunchHandler(ledgerService, log)
	recordHandler := handler.NewRecordHandler(ledgerService, loc, log)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	departmentHandler := handler.NewDepartmentHandler(departmentService, log)
	ruleHandler := handler.NewRuleHandler(ruleService, log)
	leaveHandler := handler.NewLeaveHandler(leaveService, loc, log)
	auditHandler := handler.NewAuditHandler(auditTrail, log)

	// Schedule the daily lifecycle triggers in the organizational timezone
	scheduler := cron.New(cron.WithLocation(loc))
	schedule := []struct {
		hhmm string
		run  func(context.Context) (*service.TriggerResult, error)
	}{
		{cfg.Schedule.MorningReset, lifecycleService.RunMorningReset},
		{cfg.Schedule.AbsenceCheck, lifecycleService.RunAbsenceCheck},
		{cfg.Schedule.AutoCheckout, lifecycleService.RunAutoCheckout},
	}
	for _, entry := range schedule {
		spec, err := config.CronSpec(entry.hhmm)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid trigger schedule")
		}
		run := entry.run
		if _, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := run(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled trigger run failed")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule trigger")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "attendance-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/attendance", func(r chi.Router) {
		r.Use(httputil.Auth(&cfg.JWT))

		// Punch routes
		r.Post("/punch/in", punchHandler.ClockIn)
		r.Post("/punch/out", punchHandler.ClockOut)

		// Ledger read and correction routes
		r.Route("/records", func(r chi.Router) {
			r.Get("/daily", recordHandler.DailySnapshot)
			r.Get("/dashboard", recordHandler.Dashboard)
			r.With(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin)).
				Get("/export", recordHandler.Export)
			r.With(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin)).
				Put("/{id}", recordHandler.Update)
			r.With(httputil.RequireRole(handler.RoleAdmin)).
				Delete("/{id}", recordHandler.Delete)
		})

		// Daily lifecycle triggers
		r.Route("/lifecycle", func(r chi.Router) {
			r.Use(httputil.RequireRole(handler.RoleAdmin))
			r.Get("/status", lifecycleHandler.Status)
			r.Post("/{trigger}/run", lifecycleHandler.Run)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Get("/{id}", employeeHandler.Get)
			r.Get("/{id}/records", recordHandler.History)
			r.Get("/{id}/records/latest", recordHandler.Latest)
			r.Get("/{id}/rule", ruleHandler.ResolveForEmployee)
			r.Get("/{id}/leave", leaveHandler.ListForEmployee)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin))
				r.Post("/", employeeHandler.Create)
				r.Put("/{id}", employeeHandler.Update)
				r.Delete("/{id}", employeeHandler.Delete)
			})
		})

		// Department routes
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", departmentHandler.List)
			r.Get("/{id}", departmentHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin))
				r.Post("/", departmentHandler.Create)
				r.Put("/{id}", departmentHandler.Update)
			})
		})

		// Rule routes
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", ruleHandler.List)
			r.Get("/{id}", ruleHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin))
				r.Post("/", ruleHandler.Create)
				r.Put("/{id}", ruleHandler.Update)
				r.Delete("/{id}", ruleHandler.Delete)
			})
		})

		// Leave routes
		r.Route("/leave", func(r chi.Router) {
			r.Post("/", leaveHandler.Submit)
			r.Get("/mine", leaveHandler.Mine)
			r.Post("/{id}/read", leaveHandler.MarkRead)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(handler.RoleManager, handler.RoleHR, handler.RoleAdmin))
				r.Get("/pending", leaveHandler.Pending)
				r.Post("/{id}/decide", leaveHandler.Decide)
			})
		})

		// Audit trail
		r.With(httputil.RequireRole(handler.RoleHR, handler.RoleAdmin)).
			Get("/audit", auditHandler.List)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("stopped")
}
