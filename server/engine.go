// Package server 管理服务进程的生命周期
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"conference/logging"
)

// IServer 应用需实现的生命周期步骤
//
// Engine 按 LoadConfig -> SetupDependencies -> StartBackgroundTasks -> Run
// 的顺序调用，收到信号或 Run 返回后调用 Shutdown。
type IServer interface {
	Name() string

	// LoadConfig 解析配置文件与环境变量
	LoadConfig() error

	// SetupDependencies 连接数据库、缓存与消息传输，组装服务和路由
	SetupDependencies(ctx context.Context) error

	// StartBackgroundTasks 启动非阻塞的后台任务，ctx 在关闭时取消
	StartBackgroundTasks(ctx context.Context) error

	// Run 阻塞运行主服务
	Run(ctx context.Context) error

	// Shutdown 释放资源
	Shutdown(ctx context.Context) error
}

// Engine 编排 IServer 的启动与关闭
type Engine struct {
	server  IServer
	options *Options
	logger  logging.Logger
	state   atomic.Int32
}

// NewEngine 创建引擎
func NewEngine(server IServer, opts ...Option) *Engine {
	options := DefaultOptions()
	if name := server.Name(); name != "" {
		options.Name = name
	}
	for _, o := range opts {
		o(options)
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.ComponentLogger("server")
	}
	e := &Engine{
		server:  server,
		options: options,
		logger:  logger.WithFields(logging.String("app", options.Name)),
	}
	e.setState(StatePending)
	return e
}

// State 当前状态
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

func (e *Engine) fail(err error) error {
	e.setState(StateError)
	return err
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Start 执行完整生命周期，直到收到信号或 Run 返回
func (e *Engine) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.logger.Info(ctx, "starting", logging.String("version", e.options.Version))

	e.setState(StateInitializing)
	if err := e.server.LoadConfig(); err != nil {
		return e.fail(fmt.Errorf("load config: %w", err))
	}

	setupCtx, setupCancel := context.WithTimeout(ctx, e.options.StartupTimeout)
	err := e.server.SetupDependencies(setupCtx)
	setupCancel()
	if err != nil {
		return e.fail(fmt.Errorf("setup dependencies: %w", err))
	}
	e.setState(StatePrepared)

	if err := runHooks(ctx, e.options.OnBeforeStart); err != nil {
		return e.fail(fmt.Errorf("before start hook: %w", err))
	}
	if err := e.server.StartBackgroundTasks(ctx); err != nil {
		return e.fail(fmt.Errorf("start background tasks: %w", err))
	}

	e.setState(StateRunning)
	errCh := make(chan error, 1)
	go func() { errCh <- e.server.Run(ctx) }()

	if err := runHooks(ctx, e.options.OnAfterStart); err != nil {
		e.logger.Warn(ctx, "after start hook failed", logging.Error(err))
	}

	signals := e.options.Signals
	if signals == nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(quit)
		signals = quit
	}

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			e.logger.Error(ctx, "server stopped with error", logging.Error(runErr))
		} else {
			e.logger.Info(ctx, "server stopped")
		}
	case sig := <-signals:
		e.logger.Info(ctx, "received signal", logging.String("signal", sig.String()))
	}
	cancel()

	e.setState(StateStopping)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), e.options.ShutdownTimeout)
	defer shutdownCancel()

	if err := runHooks(shutdownCtx, e.options.OnBeforeStop); err != nil {
		e.logger.Warn(shutdownCtx, "before stop hook failed", logging.Error(err))
	}
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		e.logger.Error(shutdownCtx, "shutdown failed", logging.Error(err))
		return e.fail(err)
	}
	if err := runHooks(shutdownCtx, e.options.OnAfterStop); err != nil {
		e.logger.Warn(shutdownCtx, "after stop hook failed", logging.Error(err))
	}

	if runErr != nil {
		return e.fail(fmt.Errorf("server execution error: %w", runErr))
	}
	e.setState(StateStopped)
	e.logger.Info(shutdownCtx, "shutdown complete")
	return nil
}
