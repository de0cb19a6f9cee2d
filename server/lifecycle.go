package server

import (
	"context"
	"os"
	"time"

	"conference/logging"
)

// State 生命周期状态
type State int32

const (
	// StatePending 等待初始化
	StatePending State = iota
	// StateInitializing 正在加载配置
	StateInitializing
	// StatePrepared 依赖已就绪
	StatePrepared
	// StateRunning 服务运行中
	StateRunning
	// StateStopping 正在优雅关闭
	StateStopping
	// StateStopped 已停止
	StateStopped
	// StateError 发生不可恢复的错误
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateInitializing:
		return "Initializing"
	case StatePrepared:
		return "Prepared"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Hook 生命周期回调
type Hook func(ctx context.Context) error

// Options 引擎选项
type Options struct {
	Name            string
	Version         string
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger
	// Signals 为 nil 时监听 SIGINT/SIGTERM/SIGHUP
	Signals <-chan os.Signal

	OnBeforeStart []Hook
	OnAfterStart  []Hook
	OnBeforeStop  []Hook
	OnAfterStop   []Hook
}

// Option 修改引擎选项
type Option func(*Options)

// DefaultOptions 默认选项
func DefaultOptions() *Options {
	return &Options{
		Name:            "conferenced",
		Version:         "0.0.0",
		StartupTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func WithVersion(version string) Option {
	return func(o *Options) { o.Version = version }
}

func WithStartupTimeout(t time.Duration) Option {
	return func(o *Options) { o.StartupTimeout = t }
}

func WithShutdownTimeout(t time.Duration) Option {
	return func(o *Options) { o.ShutdownTimeout = t }
}

func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithSignals 使用自定义的信号通道，测试中用来模拟 SIGTERM
func WithSignals(ch <-chan os.Signal) Option {
	return func(o *Options) { o.Signals = ch }
}

// WithBeforeStart 添加启动前回调
func WithBeforeStart(fn Hook) Option {
	return func(o *Options) { o.OnBeforeStart = append(o.OnBeforeStart, fn) }
}

// WithBeforeStop 添加关闭前回调
func WithBeforeStop(fn Hook) Option {
	return func(o *Options) { o.OnBeforeStop = append(o.OnBeforeStop, fn) }
}

// WithAfterStop 添加停止后回调
func WithAfterStop(fn Hook) Option {
	return func(o *Options) { o.OnAfterStop = append(o.OnAfterStop, fn) }
}
