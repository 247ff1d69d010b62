package history

import (
	"errors"
	"sync"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Applier 执行一个命令；复合命令必须整体生效或整体失败
type Applier interface {
	Apply(cmd model.Command) error
}

// ApplierFunc 函数形式的 Applier
type ApplierFunc func(cmd model.Command) error

// Apply 实现 Applier
func (f ApplierFunc) Apply(cmd model.Command) error { return f(cmd) }

// Journal 单分支的撤销/重做栈
type Journal struct {
	mu   sync.Mutex
	undo []model.HistoryStep
	redo []model.HistoryStep
}

// NewJournal 创建空日志
func NewJournal() *Journal {
	return &Journal{}
}

// Push 记录新步骤并清空重做栈
func (j *Journal) Push(step model.HistoryStep) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.undo = append(j.undo, step)
	j.redo = nil
}

// Undo 弹出栈顶步骤并执行其逆命令；执行失败时两个栈保持不变
func (j *Journal) Undo(a Applier) (model.HistoryStep, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.undo) == 0 {
		return model.HistoryStep{}, ErrNothingToUndo
	}
	step := j.undo[len(j.undo)-1]
	if err := a.Apply(step.Inverse); err != nil {
		return step, err
	}
	j.undo = j.undo[:len(j.undo)-1]
	j.redo = append(j.redo, step)
	return step, nil
}

// Redo 弹出重做栈顶并重新执行正向命令
func (j *Journal) Redo(a Applier) (model.HistoryStep, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.redo) == 0 {
		return model.HistoryStep{}, ErrNothingToRedo
	}
	step := j.redo[len(j.redo)-1]
	if err := a.Apply(step.Forward); err != nil {
		return step, err
	}
	j.redo = j.redo[:len(j.redo)-1]
	j.undo = append(j.undo, step)
	return step, nil
}

// CanUndo 是否可撤销
func (j *Journal) CanUndo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undo) > 0
}

// CanRedo 是否可重做
func (j *Journal) CanRedo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.redo) > 0
}

// Len 返回撤销栈与重做栈的深度
func (j *Journal) Len() (undo, redo int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undo), len(j.redo)
}
