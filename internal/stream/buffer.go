package stream

import "vitals-monitor/internal/models"

// Buffer 读数滚动缓冲区（固定容量，溢出时淘汰最旧条目）
// 非并发安全：由 Controller 独占写入并加锁
type Buffer struct {
	capacity int
	items    []models.CanonicalReading
}

// NewBuffer 创建缓冲区；capacity 小于 1 时按 1 处理
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		items:    make([]models.CanonicalReading, 0, capacity),
	}
}

// Append 追加一条读数（到达顺序即存储顺序）
func (b *Buffer) Append(reading models.CanonicalReading) {
	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
	}
	b.items = append(b.items, reading)
}

// Len 当前读数条数
func (b *Buffer) Len() int {
	return len(b.items)
}

// Latest 最新一条读数
func (b *Buffer) Latest() (models.CanonicalReading, bool) {
	if len(b.items) == 0 {
		return models.CanonicalReading{}, false
	}
	return b.items[len(b.items)-1], true
}

// Tail 最近 n 条读数的副本
func (b *Buffer) Tail(n int) []models.CanonicalReading {
	if n > len(b.items) {
		n = len(b.items)
	}
	out := make([]models.CanonicalReading, n)
	copy(out, b.items[len(b.items)-n:])
	return out
}

// Snapshot 全量副本（旧→新）
func (b *Buffer) Snapshot() []models.CanonicalReading {
	out := make([]models.CanonicalReading, len(b.items))
	copy(out, b.items)
	return out
}
