package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/application/usecase"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/identity"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/lock"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/memory"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/timetracker-api/internal/interfaces/http"
	"github.com/jhoicas/timetracker-api/pkg/config"
	"github.com/jhoicas/timetracker-api/pkg/logger"
	"github.com/jhoicas/timetracker-api/pkg/metrics"
	"github.com/jhoicas/timetracker-api/pkg/webhook"
)

const swaggerFile = "./docs/swagger.json"

// stores repositorios y runner transaccional del backend elegido.
type stores struct {
	employees repository.EmployeeRepository
	companies repository.CompanyRepository
	reports   repository.ReportRepository
	tx        report.TxRunner
	pg        postgres.Querier
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Str("lock", cfg.Lock.Backend).
		Str("identity", cfg.Identity.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacén")
	}
	defer st.close()

	leaseLock, closeLock, err := openLock(ctx, cfg, st)
	if err != nil {
		log.Fatal().Err(err).Msg("coordinador de bloqueo")
	}
	defer closeLock()

	var idp ports.IdentityProvider
	switch cfg.Identity.Backend {
	case config.IdentityMemory:
		// Sin proveedor externo, la primera sesión de cada usuario lo da de alta.
		idp = identity.NewMemoryProvider().EnableSelfRegistration()
	default:
		idp = identity.NewClerkProvider(cfg.Identity.ClerkAPIURL, cfg.Identity.ClerkSecret).
			WithTimeout(cfg.Identity.Timeout())
	}

	var verifier *webhook.Verifier
	if cfg.Identity.WebhookSecret != "" {
		if verifier, err = webhook.NewVerifier(cfg.Identity.WebhookSecret); err != nil {
			log.Fatal().Err(err).Msg("secreto de webhook")
		}
	} else {
		log.Warn().Msg("CLERK_WEBHOOK_SECRET vacío: el webhook de identidad queda deshabilitado")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	admission := bootstrap.NewAdmissionService(st.employees, idp, leaseLock, bootstrap.Config{
		RetryInterval: cfg.Bootstrap.RetryInterval(),
		MaxAttempts:   cfg.Bootstrap.MaxAttempts,
		Lease:         cfg.Lock.Lease(),
	}, log).WithRecorder(m)

	companyUC := usecase.NewCompanyUseCase(st.companies)
	employeeUC := usecase.NewEmployeeUseCase(st.employees, idp)
	engine := report.NewEngine(st.tx, st.reports)
	resolver := report.NewCompanyResolver(st.companies)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "TimeTracker API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Bootstrap:       admission,
		Identity:        idp,
		WebhookVerifier: verifier,
		CompanyUC:       companyUC,
		EmployeeUC:      employeeUC,
		Reports:         engine,
		Resolver:        resolver,
		JWTSecret:       cfg.JWT.Secret,
		Log:             log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Backend == config.StoreMemory {
		s := memory.NewStore()
		return &stores{
			employees: s.Employees(),
			companies: s.Companies(),
			reports:   s.Reports(),
			tx:        s,
			close:     func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		employees: postgres.NewEmployeeRepository(pool),
		companies: postgres.NewCompanyRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		tx:        postgres.NewTxRunner(pool),
		pg:        pool,
		close:     pool.Close,
	}, nil
}

func openLock(ctx context.Context, cfg *config.Config, st *stores) (bootstrap.LockCoordinator, func(), error) {
	switch cfg.Lock.Backend {
	case config.LockMemory:
		return lock.NewMemoryLock(cfg.Lock.Lease()), func() {}, nil
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return lock.NewRedisLock(client, cfg.Lock.Name, cfg.Lock.Lease()), func() { _ = client.Close() }, nil
	default:
		return postgres.NewLeaseLock(st.pg, cfg.Lock.Name, cfg.Lock.Lease()), func() {}, nil
	}
}
