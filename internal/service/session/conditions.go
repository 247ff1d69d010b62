package session

import (
	"context"
	"fmt"

	"github.com/chompchompbalboa/simplesheet/internal/model"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
)

// 筛选、排序、分组在加入激活列表前校验，不进入撤销历史

func (s *Session) validateColumn(columnID string) error {
	if _, ok := s.st.column(columnID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, columnID)
	}
	return nil
}

// AddFilter 追加筛选条件
func (s *Session) AddFilter(columnID string, op model.FilterOperator, value string) (model.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := model.Filter{ID: s.newID(), SheetID: s.st.sheet.ID, ColumnID: columnID, Operator: op, Value: value}
	if err := s.validateFilter(f); err != nil {
		return model.Filter{}, err
	}
	s.st.filters = append(s.st.filters, f)
	s.dirty = true
	s.persist("create filter", func(ctx context.Context) error { return s.gateway.CreateFilter(ctx, f) })
	return f, nil
}

// AddFilterExpression 解析 "列名 运算符 值;" 并追加筛选条件
func (s *Session) AddFilterExpression(expr string) (model.Filter, error) {
	s.mu.Lock()
	columns := append([]model.Column(nil), s.st.columns...)
	s.mu.Unlock()

	parsed, err := parser.ParseFilterExpression(expr, columns)
	if err != nil {
		return model.Filter{}, err
	}
	return s.AddFilter(parsed.ColumnID, parsed.Operator, parsed.Value)
}

// UpdateFilter 修改筛选条件
func (s *Session) UpdateFilter(f model.Filter) (model.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.filters, f.ID, func(f model.Filter) string { return f.ID })
	if i < 0 {
		return model.Filter{}, fmt.Errorf("%w: %s", ErrUnknownCondition, f.ID)
	}
	f.SheetID = s.st.sheet.ID
	if err := s.validateFilter(f); err != nil {
		return model.Filter{}, err
	}
	s.st.filters[i] = f
	s.dirty = true
	s.persist("update filter", func(ctx context.Context) error { return s.gateway.UpdateFilter(ctx, f) })
	return f, nil
}

// RemoveFilter 删除筛选条件
func (s *Session) RemoveFilter(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.filters, id, func(f model.Filter) string { return f.ID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCondition, id)
	}
	s.st.filters = append(s.st.filters[:i], s.st.filters[i+1:]...)
	s.dirty = true
	s.persist("delete filter", func(ctx context.Context) error { return s.gateway.DeleteFilter(ctx, id) })
	return nil
}

func (s *Session) validateFilter(f model.Filter) error {
	if err := s.validateColumn(f.ColumnID); err != nil {
		return err
	}
	if !f.Operator.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperator, f.Operator)
	}
	return nil
}

// AddSort 追加排序条件（优先级低于已有条件）
func (s *Session) AddSort(columnID string, order model.SortOrder) (model.Sort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Sort{ID: s.newID(), SheetID: s.st.sheet.ID, ColumnID: columnID, Order: order}
	if err := s.validateOrdering(columnID, order); err != nil {
		return model.Sort{}, err
	}
	s.st.sorts = append(s.st.sorts, st)
	s.dirty = true
	s.persist("create sort", func(ctx context.Context) error { return s.gateway.CreateSort(ctx, st) })
	return st, nil
}

// UpdateSort 修改排序条件
func (s *Session) UpdateSort(st model.Sort) (model.Sort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.sorts, st.ID, func(st model.Sort) string { return st.ID })
	if i < 0 {
		return model.Sort{}, fmt.Errorf("%w: %s", ErrUnknownCondition, st.ID)
	}
	if err := s.validateOrdering(st.ColumnID, st.Order); err != nil {
		return model.Sort{}, err
	}
	st.SheetID = s.st.sheet.ID
	s.st.sorts[i] = st
	s.dirty = true
	s.persist("update sort", func(ctx context.Context) error { return s.gateway.UpdateSort(ctx, st) })
	return st, nil
}

// RemoveSort 删除排序条件
func (s *Session) RemoveSort(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.sorts, id, func(st model.Sort) string { return st.ID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCondition, id)
	}
	s.st.sorts = append(s.st.sorts[:i], s.st.sorts[i+1:]...)
	s.dirty = true
	s.persist("delete sort", func(ctx context.Context) error { return s.gateway.DeleteSort(ctx, id) })
	return nil
}

// AddGroup 追加分组条件
func (s *Session) AddGroup(columnID string, order model.SortOrder) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := model.Group{ID: s.newID(), SheetID: s.st.sheet.ID, ColumnID: columnID, Order: order}
	if err := s.validateOrdering(columnID, order); err != nil {
		return model.Group{}, err
	}
	s.st.groups = append(s.st.groups, g)
	s.dirty = true
	s.persist("create group", func(ctx context.Context) error { return s.gateway.CreateGroup(ctx, g) })
	return g, nil
}

// UpdateGroup 修改分组条件
func (s *Session) UpdateGroup(g model.Group) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.groups, g.ID, func(g model.Group) string { return g.ID })
	if i < 0 {
		return model.Group{}, fmt.Errorf("%w: %s", ErrUnknownCondition, g.ID)
	}
	if err := s.validateOrdering(g.ColumnID, g.Order); err != nil {
		return model.Group{}, err
	}
	g.SheetID = s.st.sheet.ID
	s.st.groups[i] = g
	s.dirty = true
	s.persist("update group", func(ctx context.Context) error { return s.gateway.UpdateGroup(ctx, g) })
	return g, nil
}

// RemoveGroup 删除分组条件
func (s *Session) RemoveGroup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.st.groups, id, func(g model.Group) string { return g.ID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCondition, id)
	}
	s.st.groups = append(s.st.groups[:i], s.st.groups[i+1:]...)
	s.dirty = true
	s.persist("delete group", func(ctx context.Context) error { return s.gateway.DeleteGroup(ctx, id) })
	return nil
}

func (s *Session) validateOrdering(columnID string, order model.SortOrder) error {
	if err := s.validateColumn(columnID); err != nil {
		return err
	}
	if !order.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}
	return nil
}

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}
