package selection

import (
	"sync"
	"time"
)

// DefaultCommitDelay 单元格空闲多久后写入
const DefaultCommitDelay = 2500 * time.Millisecond

// Stopper 可取消的定时器
type Stopper interface {
	Stop() bool
}

// AfterFunc 定时器工厂，测试中可替换
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

type pendingWrite struct {
	timer Stopper
	token uint64
}

// Debouncer 按 key（单元格 ID）合并写入：每次 Schedule 取消旧定时器并重新计时，
// 到期或显式 Flush 时调用 flush。
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	afterFunc AfterFunc
	flush     func(key string)
	pending   map[string]pendingWrite
	nextToken uint64
}

// NewDebouncer 创建 Debouncer；afterFunc 为 nil 时使用 time.AfterFunc
func NewDebouncer(delay time.Duration, afterFunc AfterFunc, flush func(key string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultCommitDelay
	}
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Debouncer{
		delay:     delay,
		afterFunc: afterFunc,
		flush:     flush,
		pending:   make(map[string]pendingWrite),
	}
}

// Schedule 为 key 重新计时
func (d *Debouncer) Schedule(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}
	d.nextToken++
	token := d.nextToken
	timer := d.afterFunc(d.delay, func() { d.fire(key, token) })
	d.pending[key] = pendingWrite{timer: timer, token: token}
}

func (d *Debouncer) fire(key string, token uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.token != token {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.flush(key)
}

// Cancel 取消 key 的待写入，返回之前是否存在。调用方负责自行写入。
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Flush 立即写入 key 的待写入并取消定时器；无待写入时不做任何事
func (d *Debouncer) Flush(key string) bool {
	if !d.Cancel(key) {
		return false
	}
	d.flush(key)
	return true
}

// FlushAll 写入全部待写入（关闭时调用）
func (d *Debouncer) FlushAll() int {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	d.pending = make(map[string]pendingWrite)
	d.mu.Unlock()

	for _, key := range keys {
		d.flush(key)
	}
	return len(keys)
}

// Pending 是否有待写入
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
