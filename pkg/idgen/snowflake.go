package idgen

import (
	"strconv"
	"sync"
	"time"
)

// SnowflakeIDGenerator 简化的雪花ID生成器，用于报价 ID
// ID格式: 毫秒时间戳 * 100000 + 机器ID(2位) * 1000 + 序列号(3位)
// 十进制拼接便于在日志和 URL 里直接辨认机器号
type SnowflakeIDGenerator struct {
	mu        sync.Mutex
	epoch     int64 // 起始时间戳 (2024-01-01 00:00:00 UTC，毫秒)
	machineID int64 // 机器ID (0-99)
	sequence  int64 // 序列号 (0-999)
	lastTime  int64 // 上次生成ID的毫秒时间戳
	now       func() time.Time
}

const (
	maxMachineID = 99  // 最大机器ID
	maxSequence  = 999 // 最大序列号
)

// NewSnowflakeIDGenerator 创建ID生成器
// machineID 超出 0-99 时按 0 处理
func NewSnowflakeIDGenerator(machineID int64) *SnowflakeIDGenerator {
	if machineID < 0 || machineID > maxMachineID {
		machineID = 0
	}

	return &SnowflakeIDGenerator{
		epoch:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		machineID: machineID,
		now:       time.Now,
	}
}

// NextID 生成下一个ID（单调递增）
func (g *SnowflakeIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UnixMilli()
	if now < g.lastTime {
		// 时钟回拨时沿用上次时间，靠序列号保证递增
		now = g.lastTime
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) % (maxSequence + 1)
		if g.sequence == 0 {
			// 序列号用尽，等待下一毫秒
			for now <= g.lastTime {
				now = g.now().UnixMilli()
				if now <= g.lastTime {
					time.Sleep(100 * time.Microsecond)
				}
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTime = now

	return (now-g.epoch)*100000 + g.machineID*1000 + g.sequence
}

// NextString 生成字符串形式的ID
func (g *SnowflakeIDGenerator) NextString() string {
	return strconv.FormatInt(g.NextID(), 10)
}

// MachineID 从ID中解析机器号
func MachineID(id int64) int64 {
	return (id / 1000) % 100
}

// 全局默认ID生成器（机器ID为1）
var defaultGenerator = NewSnowflakeIDGenerator(1)

// GenerateID 生成ID（使用默认生成器）
func GenerateID() int64 {
	return defaultGenerator.NextID()
}
