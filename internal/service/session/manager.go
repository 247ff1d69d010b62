package session

import (
	"context"
	"sync"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// Backend 打开会话所需的持久化接口
type Backend interface {
	Gateway
	LoadSheet(ctx context.Context, id string) (*model.SheetData, error)
}

// Manager 会话管理器：按 sheet 懒加载会话，同一 sheet 只有一个会话
type Manager struct {
	backend Backend
	opts    Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager 创建会话管理器
func NewManager(backend Backend, opts Options) *Manager {
	return &Manager{
		backend:  backend,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get 返回 sheet 的会话，首次访问时从 backend 加载
func (m *Manager) Get(ctx context.Context, sheetID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sheetID]; ok {
		return s, nil
	}
	data, err := m.backend.LoadSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	s := New(data, m.backend, m.opts)
	m.sessions[sheetID] = s
	return s, nil
}

// Evict 关闭并移除会话（sheet 被删除时调用）
func (m *Manager) Evict(sheetID string) {
	m.mu.Lock()
	s, ok := m.sessions[sheetID]
	delete(m.sessions, sheetID)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// CloseAll 关闭全部会话，写入所有未完成的编辑
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Open 当前已打开的会话数
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
