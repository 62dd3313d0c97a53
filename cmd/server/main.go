package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"tokenbook/internal/api"
	"tokenbook/internal/config"
	"tokenbook/internal/db"
	"tokenbook/internal/httpx"
	"tokenbook/internal/metrics"
	"tokenbook/internal/repository"
	"tokenbook/internal/service"
	"tokenbook/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()
	if err := conn.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}
	metrics.Register()

	bookingRepo := repository.NewBookingRepository(conn)
	adminAuthRepo := repository.NewAdminAuthRepository(conn)
	jobRepo := repository.NewJobRepository(conn)

	sender := service.NewSenderService(service.SenderConfig{
		TwilioAccountSID:  cfg.TwilioAccountSID,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		TwilioFromNumber:  cfg.TwilioFromNumber,
		CountryCode:       cfg.SMSCountryCode,
		SendGridAPIKey:    cfg.SendGridAPIKey,
		SendGridFromEmail: cfg.SendGridFromEmail,
		SendGridFromName:  cfg.SendGridFromName,
		AdminEmail:        cfg.AdminNotifyEmail,
	})
	rules := service.Rules{
		Location:        cfg.Location,
		MaxTokensPerDay: cfg.MaxTokensPerDay,
		CutoffHour:      cfg.BookingCutoffHour,
		CountryCode:     cfg.SMSCountryCode,
	}
	bookingSvc := service.NewBookingService(bookingRepo, sender, rules)
	adminSvc := service.NewAdminService(bookingRepo, sender, rules)
	authSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(jobRepo, cfg.Location)

	if cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to seed admin %q: %v", cfg.AdminUsername, err)
		}
		cancel()
	}

	var counter httpx.Counter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		counter = httpx.NewRedisCounter(rdb, time.Minute, "tokenbook:book")
	} else {
		counter = httpx.NewMemoryCounter(time.Minute)
	}

	trusted, err := httpx.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	r := api.NewRouter(api.RouterConfig{
		Bookings:    bookingSvc,
		Admin:       adminSvc,
		AdminAuth:   api.NewAdminAuthHandler(authSvc, cfg.SecureCookie),
		JWTSecret:   cfg.JWTSecret,
		BookLimiter: httpx.RateLimit(counter, cfg.RateLimitPerMinute, httpx.ClientIP(trusted), log.Printf),
		Page:        web.Handler(),
		Metrics:     promhttp.Handler(),
		Health:      conn.PingContext,
	})

	var h http.Handler = r
	if len(cfg.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cfg.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.CustomLoggingHandler(os.Stdout, h, httpx.AccessLog)
	h = httpx.WithRequestID(h)

	c := cron.New(cron.WithLocation(cfg.Location))
	if _, err := jobSvc.Schedule(c, cfg.DailyResetCron); err != nil {
		log.Fatalf("Invalid DAILY_RESET_CRON %q: %v", cfg.DailyResetCron, err)
	}
	c.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
