package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/ledgerline/internal/allocation"
	"github.com/MrJamesThe3rd/ledgerline/internal/config"
	"github.com/MrJamesThe3rd/ledgerline/internal/database"
	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	facilityStore "github.com/MrJamesThe3rd/ledgerline/internal/facility/store"
	ledgerlineHttp "github.com/MrJamesThe3rd/ledgerline/internal/http"
	facilityHandler "github.com/MrJamesThe3rd/ledgerline/internal/http/facility"
	ledgerHandler "github.com/MrJamesThe3rd/ledgerline/internal/http/ledger"
	paymentHandler "github.com/MrJamesThe3rd/ledgerline/internal/http/payment"
	reconcileHandler "github.com/MrJamesThe3rd/ledgerline/internal/http/reconcile"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/ledgerline/internal/ledger/store"
	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/ledgerline/internal/payment/store"
	"github.com/MrJamesThe3rd/ledgerline/internal/reconcile"
	"github.com/MrJamesThe3rd/ledgerline/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		facilityService  = facility.NewService(facilityStore.New(db))
		ledgerService    = ledger.NewService(ledgerStore.New(db))
		allocService     = allocation.NewService(ledgerService)
		paymentService   = payment.NewService(paymentStore.New(db), allocService)
		reconcileService = reconcile.NewService(ledgerService, paymentService, facilityService)
	)

	var (
		facilityH  = facilityHandler.NewHandler(facilityService)
		ledgerH    = ledgerHandler.NewHandler(ledgerService)
		paymentH   = paymentHandler.NewHandler(paymentService)
		reconcileH = reconcileHandler.NewHandler(reconcileService)
	)

	if cfg.Reconcile.Schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Reconcile.Schedule, func() {
			report, err := reconcileService.RepairAll(context.Background())
			if err != nil {
				slog.Error("scheduled orphan repair failed", "error", err)
				return
			}

			slog.Info("scheduled orphan repair finished",
				"repaired", report.Repaired,
				"unresolved", len(report.Unresolved),
				"failures", len(report.Failures),
				"inconsistent", len(report.Inconsistent))
		}); err != nil {
			slog.Error("failed to schedule orphan repair", "error", err)
			os.Exit(1)
		}

		scheduler.Start()
		defer scheduler.Stop()
	}

	router := ledgerlineHttp.New(facilityH, ledgerH, paymentH, reconcileH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
