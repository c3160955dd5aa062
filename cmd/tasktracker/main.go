package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/api"
	"tasktracker/internal/config"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	accountSvc := service.NewAccountService(userRepo)
	taskSvc := service.NewTaskService(taskRepo)
	authSvc := service.NewAuthService(tokenRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	if len(os.Args) > 1 && os.Args[1] == "createsuperuser" {
		if err := runCreateSuperuser(ctx, accountSvc, os.Args[2:]); err != nil {
			log.Fatalf("createsuperuser: %v", err)
		}
		return
	}

	scheduler := service.NewSchedulerService(time.Local)
	if err := schedulePurge(scheduler, authSvc, cfg); err != nil {
		log.Fatalf("schedule token purge: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.New(accountSvc, taskSvc, authSvc).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("[info] task tracker listening on %s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

func schedulePurge(scheduler *service.SchedulerService, authSvc *service.AuthService, cfg config.Config) error {
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := authSvc.PurgeExpired(jobCtx)
		if err != nil {
			log.Printf("purge refresh tokens: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("[info] purged %d expired refresh tokens", removed)
		}
	}

	if cfg.PurgeAt != "" {
		_, err := scheduler.ScheduleDaily(cfg.PurgeAt, job)
		return err
	}
	if cfg.PurgeInterval > 0 {
		_, err := scheduler.ScheduleInterval(cfg.PurgeInterval, job)
		return err
	}
	return nil
}

func runCreateSuperuser(ctx context.Context, accounts *service.AccountService, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: tasktracker createsuperuser <email> <name> [password]")
	}
	email, name := args[0], args[1]
	var password string
	if len(args) > 2 {
		password = args[2]
	}

	user, err := accounts.CreateSuperuser(ctx, email, name, password)
	if err != nil {
		return err
	}
	log.Printf("[info] superuser %s created (id=%d)", user.Email, user.ID)
	return nil
}
