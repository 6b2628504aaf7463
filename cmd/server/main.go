// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/config"
	"github.com/unclebandit/autoreachpro-backend/internal/controller"
	"github.com/unclebandit/autoreachpro-backend/internal/db"
	"github.com/unclebandit/autoreachpro-backend/internal/logger"
	"github.com/unclebandit/autoreachpro-backend/internal/mailer"
	"github.com/unclebandit/autoreachpro-backend/internal/metrics"
	"github.com/unclebandit/autoreachpro-backend/internal/middleware"
	"github.com/unclebandit/autoreachpro-backend/internal/notify"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/queue"
	"github.com/unclebandit/autoreachpro-backend/internal/quota"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, zl)
	if err != nil {
		return err
	}
	defer conn.Close()
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
	}

	leadRepo := &repository.LeadRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	templateRepo := &repository.TemplateRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}
	profileRepo := &repository.ProfileRepository{DB: conn}

	var limiter quota.Limiter = quota.Unlimited{}
	if cfg.RedisURL != "" {
		rl, err := quota.NewRedisLimiterFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rl.Client.Close()
		limiter = rl
		zl.Info("daily send quota enabled")
	}

	var q queue.Queue
	if cfg.AMQPURL != "" {
		aq, err := queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPQueue, zl)
		if err != nil {
			return err
		}
		defer aq.Close()
		q = aq
		zl.Info("publishing campaign events to amqp", zap.String("queue", cfg.AMQPQueue))
	} else {
		mq := queue.NewInMemoryQueue(zl)
		if err := service.NewContactWorker(leadRepo, zl).Subscribe(mq); err != nil {
			return err
		}
		q = mq
	}

	personalizer := personalize.New(personalize.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIModel), zl)
	mailers := mailer.NewRegistry(mailer.Options{
		ResendBaseURL:        cfg.ResendBaseURL,
		DefaultFrom:          cfg.DefaultFrom,
		SimulatedDelay:       cfg.SimulatedSendDelay,
		SimulatedFailureRate: cfg.SimulatedFailureRate,
		Log:                  zl,
	})

	templateService := &service.TemplateService{TemplateRepo: templateRepo, Log: zl}
	campaignService := &service.CampaignService{
		CampaignRepo:           campaignRepo,
		TemplateRepo:           templateRepo,
		SettingsRepo:           settingsRepo,
		Personalizer:           personalizer,
		Mailers:                mailers,
		Quota:                  limiter,
		Notifier:               notify.NewWebhookNotifier(),
		Queue:                  q,
		Log:                    zl,
		DefaultLLMKey:          cfg.OpenAIAPIKey,
		Pacing:                 cfg.SendPacing,
		PersonalizeConcurrency: cfg.PersonalizeConcurrency,
		SendLease:              cfg.SendLease,
	}

	api := &controller.API{
		Campaigns: &controller.CampaignController{CampaignService: campaignService, Log: zl},
		Leads:     &controller.LeadController{LeadService: &service.LeadService{LeadRepo: leadRepo, Log: zl}, Log: zl},
		Templates: &controller.TemplateController{TemplateService: templateService, Log: zl},
		Account: &controller.AccountController{
			Settings:  &service.SettingsService{SettingsRepo: settingsRepo},
			Analytics: &service.AnalyticsService{CampaignRepo: campaignRepo, LeadRepo: leadRepo},
			AI: &service.AIService{
				LeadRepo:      leadRepo,
				SettingsRepo:  settingsRepo,
				Personalizer:  personalizer,
				DefaultLLMKey: cfg.OpenAIAPIKey,
			},
			Profiles: &service.ProfileService{ProfileRepo: profileRepo, Templates: templateService, Log: zl},
			Log:      zl,
		},
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(zl))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(cfg.JWTSecret)))
		api.Mount(r)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
