// Package snowflake 提供实体 ID 分配器（雪花算法）
//
// ID 结构（自高位起）：41 位毫秒时间戳 | 5 位数据中心 | 5 位节点 | 12 位序列号。
package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// 起始时间戳 (2024-01-01 00:00:00 UTC)
	epoch int64 = 1704067200000

	workerIDBits     = 5
	datacenterIDBits = 5
	sequenceBits     = 12

	maxWorkerID     = -1 ^ (-1 << workerIDBits)
	maxDatacenterID = -1 ^ (-1 << datacenterIDBits)
	maxSequence     = -1 ^ (-1 << sequenceBits)

	workerIDShift      = sequenceBits
	datacenterIDShift  = sequenceBits + workerIDBits
	timestampLeftShift = sequenceBits + workerIDBits + datacenterIDBits
)

// 错误定义
var (
	ErrDatacenterOutOfRange = errors.New("datacenter ID out of range")
	ErrWorkerOutOfRange     = errors.New("worker ID out of range")
	ErrClockBackwards       = errors.New("clock moved backwards, refusing to generate id")
)

// Clock 返回当前毫秒时间戳
type Clock func() int64

// Generator Snowflake ID 生成器，并发安全
type Generator struct {
	mux           sync.Mutex
	datacenterID  int64
	workerID      int64
	sequence      int64
	lastTimestamp int64
	clock         Clock
}

// Option 生成器选项
type Option func(*Generator)

// WithClock 替换时钟（测试用）
func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// NewGenerator 创建ID生成器
func NewGenerator(datacenterID, workerID int64, opts ...Option) (*Generator, error) {
	if datacenterID < 0 || datacenterID > maxDatacenterID {
		return nil, ErrDatacenterOutOfRange
	}
	if workerID < 0 || workerID > maxWorkerID {
		return nil, ErrWorkerOutOfRange
	}

	g := &Generator{
		datacenterID:  datacenterID,
		workerID:      workerID,
		lastTimestamp: -1,
		clock:         func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NextID 生成下一个ID
func (g *Generator) NextID() (int64, error) {
	g.mux.Lock()
	defer g.mux.Unlock()

	now := g.clock()
	if now < g.lastTimestamp {
		return 0, ErrClockBackwards
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 序列号用完，等待下一毫秒
			for now <= g.lastTimestamp {
				now = g.clock()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = now

	return ((now - epoch) << timestampLeftShift) |
		(g.datacenterID << datacenterIDShift) |
		(g.workerID << workerIDShift) |
		g.sequence, nil
}

// Parts ID 的组成部分
type Parts struct {
	Timestamp    time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Decompose 拆解 ID
func Decompose(id int64) Parts {
	return Parts{
		Timestamp:    time.UnixMilli((id >> timestampLeftShift) + epoch).UTC(),
		DatacenterID: (id >> datacenterIDShift) & maxDatacenterID,
		WorkerID:     (id >> workerIDShift) & maxWorkerID,
		Sequence:     id & maxSequence,
	}
}
