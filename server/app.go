package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"conference/api"
	"conference/auth"
	"conference/cache"
	"conference/codegen/snowflake"
	"conference/config"
	core "conference/data/db"
	"conference/data/db/basic"
	"conference/httpx"
	basichttp "conference/httpx/basic"
	"conference/httpx/ginx"
	"conference/logging"
	"conference/mail"
	"conference/messaging"
	"conference/messaging/middleware"
	"conference/messaging/transport/memory"
	"conference/messaging/transport/natsjetstream"
	"conference/messaging/transport/redisstreams"
	synctransport "conference/messaging/transport/sync"
	"conference/metrics"
	"conference/ratelimit"
	"conference/service"
	"conference/storage"
	"conference/tasks"
)

// App 会议服务进程，实现 IServer
type App struct {
	loader     *config.Loader
	configPath string
	cfg        *config.Config
	mailer     mail.Mailer
	logger     logging.Logger

	db       core.IDatabase
	store    *storage.Store
	cache    cache.Store
	bus      *messaging.MessageBus
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	auth     *auth.Authenticator
	services *service.Services
	http     httpx.IHttpServer

	closers []func() error
	wg      sync.WaitGroup
}

// AppOption 修改 App
type AppOption func(*App)

// WithConfigFile 指定配置文件
func WithConfigFile(path string) AppOption {
	return func(a *App) { a.configPath = path }
}

// WithLoader 使用已绑定命令行参数的加载器
func WithLoader(l *config.Loader) AppOption {
	return func(a *App) { a.loader = l }
}

// WithConfig 直接使用给定配置，LoadConfig 只做校验
func WithConfig(cfg *config.Config) AppOption {
	return func(a *App) { a.cfg = cfg }
}

// WithMailer 替换默认的日志邮件发送器
func WithMailer(m mail.Mailer) AppOption {
	return func(a *App) { a.mailer = m }
}

// NewApp 创建服务进程
func NewApp(opts ...AppOption) *App {
	a := &App{}
	for _, o := range opts {
		o(a)
	}
	if a.loader == nil {
		a.loader = config.New(config.DefaultEnvPrefix)
	}
	return a
}

func (a *App) Name() string { return "conferenced" }

// Config 已加载的配置
func (a *App) Config() *config.Config { return a.cfg }

// Services 业务服务，SetupDependencies 之后可用
func (a *App) Services() *service.Services { return a.services }

// Authenticator 令牌签发器，SetupDependencies 之后可用
func (a *App) Authenticator() *auth.Authenticator { return a.auth }

// Handler 完整 HTTP 路由
func (a *App) Handler() http.Handler { return a.http.Handler() }

func (a *App) LoadConfig() error {
	if a.cfg == nil {
		cfg, err := a.loader.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else if err := a.cfg.Validate(); err != nil {
		return err
	}
	logging.SetLogger(logging.NewStdLogger(logging.ParseLevel(a.cfg.Log.Level)))
	a.logger = logging.ComponentLogger("app")
	return nil
}

// SetupDependencies 连接存储、缓存与消息传输，组装服务和路由
func (a *App) SetupDependencies(ctx context.Context) error {
	if a.cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	if err := a.setupStorage(ctx); err != nil {
		return err
	}
	if err := a.setupCache(ctx); err != nil {
		return err
	}
	if err := a.setupBus(); err != nil {
		return err
	}

	a.auth = auth.NewAuthenticator(a.cfg.Auth.Secret, a.cfg.Auth.Issuer, a.cfg.Auth.TokenTTL)
	a.services = service.New(service.Deps{
		Repos:     a.store,
		Cache:     a.cache,
		Publisher: a.bus,
		Logger:    logging.ComponentLogger("service"),
	})

	mailer := a.mailer
	if mailer == nil {
		mailer = mail.NewLogMailer(logging.ComponentLogger("mail"))
	}
	if err := tasks.Register(ctx, a.bus, mailer, a.services.FeaturedSpeaker); err != nil {
		return fmt.Errorf("register tasks: %w", err)
	}

	a.setupHTTP()
	return nil
}

func (a *App) setupStorage(ctx context.Context) error {
	db, err := basic.Open(ctx, core.DBConfig{
		Driver:       a.cfg.Database.Driver,
		DSN:          a.cfg.Database.DSN,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		MaxIdleConns: a.cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	ids, err := snowflake.NewGenerator(a.cfg.IDs.Datacenter, a.cfg.IDs.Worker)
	if err != nil {
		return fmt.Errorf("id generator: %w", err)
	}
	a.store = storage.New(db, ids)
	return nil
}

func (a *App) setupCache(ctx context.Context) error {
	switch a.cfg.Cache.Driver {
	case "redis":
		store, closeFn, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     a.cfg.Cache.Addr,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
		})
		if err != nil {
			return err
		}
		a.cache = store
		a.closers = append(a.closers, closeFn)
	default:
		a.cache = cache.NewMemoryStore(a.cfg.Cache.MaxSize)
	}
	return nil
}

func (a *App) newTransport() (messaging.Transport, error) {
	mc := a.cfg.Messaging
	switch mc.Driver {
	case "sync":
		return synctransport.NewSyncTransport(), nil
	case "redis":
		return redisstreams.NewTransport(redisstreams.Config{
			Addr:         mc.Redis.Addr,
			Password:     mc.Redis.Password,
			DB:           mc.Redis.DB,
			StreamPrefix: mc.Redis.StreamPrefix,
			GroupName:    mc.Redis.Group,
			Logger:       logging.ComponentLogger("transport.redis"),
		})
	case "nats":
		return natsjetstream.NewTransport(natsjetstream.Config{
			URL:           mc.NATS.URL,
			Stream:        mc.NATS.Stream,
			SubjectPrefix: mc.NATS.SubjectPrefix,
			Logger:        logging.ComponentLogger("transport.nats"),
		}), nil
	default:
		return memory.NewMemoryTransport(mc.QueueSize, mc.Workers), nil
	}
}

func (a *App) setupBus() error {
	transport, err := a.newTransport()
	if err != nil {
		return fmt.Errorf("messaging transport: %w", err)
	}
	a.bus = messaging.NewMessageBus(transport)

	if a.cfg.Metrics.Enabled {
		a.metrics = metrics.New(nil)
		a.bus.UseHandler(a.metrics.Tasks())
	}
	retry := middleware.DefaultRetryConfig()
	retry.MaxAttempts = a.cfg.Messaging.MaxRetries + 1
	a.bus.UseHandler(middleware.Retry(retry))
	a.bus.UseHandler(middleware.Logging(logging.ComponentLogger("tasks")))
	return nil
}

func (a *App) setupHTTP() {
	web := httpx.WebConfig{
		Addr:         a.cfg.Server.Addr,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	var srv httpx.IHttpServer
	if a.cfg.Server.Engine == "gin" {
		srv = ginx.New(web)
	} else {
		srv = basichttp.NewHTTPServer(web)
	}

	logger := logging.ComponentLogger("http")
	srv.Use(httpx.RequestID())
	if a.metrics != nil {
		srv.Use(a.metrics.HTTP())
		srv.Handle(http.MethodGet, a.cfg.Metrics.Path, a.metrics.Handler())
	}
	srv.Use(httpx.AccessLog(logger))
	if a.cfg.RateLimit.Enabled {
		a.limiter = ratelimit.New(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst)
		srv.Use(a.limiter.Middleware())
	}
	if a.cfg.Auth.Enabled {
		srv.Use(auth.Middleware(a.auth, logger))
	}

	srv.GET("/healthz", a.health)
	api.NewHandlers(a.services).Register(srv.Group(""))
	a.http = srv
}

func (a *App) health(ctx httpx.IHttpContext) error {
	if err := a.db.Ping(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"tasks":  a.bus.Transport().Stats(),
	})
}

// StartBackgroundTasks 启动消息传输、公告刷新与限流表清理
func (a *App) StartBackgroundTasks(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return fmt.Errorf("start messaging: %w", err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.services.Announcements.Run(ctx, a.cfg.Announcement.Interval)
	}()

	if a.limiter != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.sweepLimiter(ctx, time.Minute)
		}()
	}
	return nil
}

func (a *App) sweepLimiter(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.logger.Debug(ctx, "rate limiter swept", logging.Int("removed", n))
			}
		}
	}
}

// Run 阻塞运行 HTTP 服务
func (a *App) Run(ctx context.Context) error {
	a.logger.Info(ctx, "http listening",
		logging.String("addr", a.cfg.Server.Addr),
		logging.String("engine", a.cfg.Server.Engine))
	return a.http.Start(a.cfg.Server.Addr)
}

// Shutdown 依次停止 HTTP、后台任务、消息传输并关闭连接
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.http != nil {
		if err := a.http.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop http: %w", err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("background tasks: %w", ctx.Err()))
	}

	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close messaging: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
