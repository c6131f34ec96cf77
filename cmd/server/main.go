package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tajaar/Employee-Attendence-System/internal/config"
	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/handler"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
	"github.com/Tajaar/Employee-Attendence-System/internal/server"
	"github.com/Tajaar/Employee-Attendence-System/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := repository.EnsureSchema(ctx, pg); err != nil {
		logger.Error("failed to ensure schema", "err", err)
		os.Exit(1)
	}

	// repositories
	employeeRepo := repository.EmployeeRepository{DB: pg}
	eventRepo := repository.EventRepository{DB: pg}
	summaryRepo := repository.SummaryRepository{DB: pg}
	attendanceRepo := repository.AttendanceRepository{DB: pg}

	if err := employeeRepo.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logger.Error("failed to seed admin", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Employees: employeeRepo, Logger: logger}
	attendanceSvc := service.AttendanceService{
		Store:     attendanceRepo,
		Events:    eventRepo,
		Summaries: summaryRepo,
		Employees: employeeRepo,
		Logger:    logger,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	attendanceHandler := handler.AttendanceHandler{Service: attendanceSvc}
	adminHandler := handler.AdminHandler{Service: attendanceSvc, Auth: &authSvc, Employees: employeeRepo}

	router := server.NewRouter(cfg, logger, healthHandler, authHandler, attendanceHandler, adminHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
