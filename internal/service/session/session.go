package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/service/history"
	"github.com/chompchompbalboa/simplesheet/internal/service/resolver"
	"github.com/chompchompbalboa/simplesheet/internal/service/selection"
)

// Gateway 会话使用的持久化接口（*store.Store 实现）
type Gateway interface {
	UpdateCells(ctx context.Context, changes []model.CellChange) error
	RestoreRows(ctx context.Context, snapshots []model.RowSnapshot) error
	DeleteRows(ctx context.Context, rowIDs []string) error
	UpdateColumn(ctx context.Context, change model.ColumnChange) error

	CreateFilter(ctx context.Context, f model.Filter) error
	UpdateFilter(ctx context.Context, f model.Filter) error
	DeleteFilter(ctx context.Context, id string) error
	CreateSort(ctx context.Context, s model.Sort) error
	UpdateSort(ctx context.Context, s model.Sort) error
	DeleteSort(ctx context.Context, id string) error
	CreateGroup(ctx context.Context, g model.Group) error
	UpdateGroup(ctx context.Context, g model.Group) error
	DeleteGroup(ctx context.Context, id string) error
}

// Options 会话参数
type Options struct {
	CommitDelay    time.Duration       // 单元格防抖时长，默认 2.5s
	AfterFunc      selection.AfterFunc // 测试中替换定时器
	NewID          func() string
	OnPersistError func(op string, err error) // 远端写入失败回调，本地状态不回滚；不得回调 Session
}

type persistJob struct {
	op string
	fn func(ctx context.Context) error
}

// Session 单个 sheet 的协调者：持有本地状态、历史、选区状态机，
// 本地修改立即生效，写入按顺序异步交给 Gateway。
type Session struct {
	mu       sync.Mutex
	st       *state
	gateway  Gateway
	journal  *history.Journal
	machine  *selection.Machine
	debounce *selection.Debouncer

	activeView string
	visible    []string
	leaders    map[string]int
	dirty      bool

	newID          func() string
	onPersistError func(op string, err error)

	jobs       chan persistJob
	pending    sync.WaitGroup
	workerDone chan struct{}
	closed     bool
}

// New 由已加载的 sheet 数据创建会话
func New(data *model.SheetData, gateway Gateway, opts Options) *Session {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	s := &Session{
		st:             newState(data),
		gateway:        gateway,
		journal:        history.NewJournal(),
		machine:        selection.NewMachine(),
		newID:          opts.NewID,
		onPersistError: opts.OnPersistError,
		dirty:          true,
		jobs:           make(chan persistJob, 1024),
		workerDone:     make(chan struct{}),
	}
	if len(s.st.views) > 0 {
		s.activeView = s.st.views[0].ID
	}
	s.debounce = selection.NewDebouncer(opts.CommitDelay, opts.AfterFunc, s.flushCell)

	go s.persistLoop()
	return s
}

// persistLoop 按提交顺序执行远端写入
func (s *Session) persistLoop() {
	defer close(s.workerDone)
	ctx := context.Background()
	for job := range s.jobs {
		if err := job.fn(ctx); err != nil {
			log.Printf("session %s: %s failed: %v", s.st.sheet.ID, job.op, err)
			if s.onPersistError != nil {
				s.onPersistError(job.op, err)
			}
		}
		s.pending.Done()
	}
}

// persist 排队一次远端写入，调用方持有 s.mu
func (s *Session) persist(op string, fn func(ctx context.Context) error) {
	if s.closed {
		log.Printf("session %s: dropping %s after close", s.st.sheet.ID, op)
		return
	}
	s.pending.Add(1)
	s.jobs <- persistJob{op: op, fn: fn}
}

// flushCell 防抖到期：写入单元格当前值
func (s *Session) flushCell(cellID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.st.cells[cellID]
	if !ok {
		return
	}
	change := model.CellChange{CellID: cellID, Value: copyPtr(cell.Value)}
	s.persist("update cell", func(ctx context.Context) error {
		return s.gateway.UpdateCells(ctx, []model.CellChange{change})
	})
}

// Wait 等待已排队的写入全部完成
func (s *Session) Wait() {
	s.pending.Wait()
}

// Close 提交编辑、写入全部防抖中的单元格并停止写入协程
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.processActions(s.machine.Blur())
	s.mu.Unlock()

	s.debounce.FlushAll()

	s.mu.Lock()
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	<-s.workerDone
}

// Sheet 基本信息
func (s *Session) Sheet() model.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.sheet
}

// Data 当前全部数据的副本
func (s *Session) Data() model.SheetData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.data()
}

// Cell 按单元格 ID 读取
func (s *Session) Cell(cellID string) (model.Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.cells[cellID]
	if !ok {
		return model.Cell{}, false
	}
	return copyCell(*c), true
}

// CellAt 按行、列读取
func (s *Session) CellAt(rowID, columnID string) (model.Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.st.CellID(rowID, columnID)
	if !ok {
		return model.Cell{}, false
	}
	return copyCell(*s.st.cells[id]), true
}

// ActiveView 当前视图 ID
func (s *Session) ActiveView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeView
}

// SetActiveView 切换视图
func (s *Session) SetActiveView(viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.view(viewID); !ok {
		return ErrUnknownView
	}
	s.activeView = viewID
	return nil
}

// VisibleColumns 视图的可见列（保留 ColumnBreak，跳过已不存在的列）；
// viewID 为空时使用当前视图，没有视图时返回全部列。
func (s *Session) VisibleColumns(viewID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if viewID == "" {
		viewID = s.activeView
	}
	if viewID == "" {
		return s.allColumnIDs(), nil
	}
	v, ok := s.view(viewID)
	if !ok {
		return nil, ErrUnknownView
	}
	return s.viewColumns(v), nil
}

func (s *Session) view(viewID string) (model.View, bool) {
	for _, v := range s.st.views {
		if v.ID == viewID {
			return v, true
		}
	}
	return model.View{}, false
}

func (s *Session) allColumnIDs() []string {
	ids := make([]string, len(s.st.columns))
	for i, c := range s.st.columns {
		ids[i] = c.ID
	}
	return ids
}

func (s *Session) viewColumns(v model.View) []string {
	out := make([]string, 0, len(v.VisibleColumns))
	for _, id := range v.VisibleColumns {
		if id == model.ColumnBreak {
			out = append(out, id)
			continue
		}
		if _, ok := s.st.column(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// VisibleRows 当前筛选/排序/分组下的可见行序列（含 RowBreak）
func (s *Session) VisibleRows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolve()
	return append([]string(nil), s.visible...)
}

// Resolve 可见行与行号
func (s *Session) Resolve() resolver.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolve()
	leaders := make(map[string]int, len(s.leaders))
	for k, v := range s.leaders {
		leaders[k] = v
	}
	return resolver.Result{VisibleRows: append([]string(nil), s.visible...), RowLeaders: leaders}
}

// resolve 状态变化后重新计算可见行，调用方持有 s.mu
func (s *Session) resolve() {
	if !s.dirty {
		return
	}
	result := resolver.Resolve(resolver.Input{
		RowIDs:  s.st.rowIDs(),
		Cells:   s.st,
		Filters: s.st.filters,
		Sorts:   s.st.sorts,
		Groups:  s.st.groups,
	})
	s.visible = result.VisibleRows
	s.leaders = result.RowLeaders
	s.dirty = false
}

func (s *Session) layout() selection.Layout {
	s.resolve()
	columns := s.allColumnIDs()
	if v, ok := s.view(s.activeView); ok {
		columns = s.viewColumns(v)
	}
	return selection.Layout{RowIDs: s.visible, ColumnIDs: columns}
}

// CanUndo 是否可撤销
func (s *Session) CanUndo() bool { return s.journal.CanUndo() }

// CanRedo 是否可重做
func (s *Session) CanRedo() bool { return s.journal.CanRedo() }
