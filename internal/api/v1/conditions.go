package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/model"
)

// FilterRequest 筛选请求；给出 expression 时按 "列名 运算符 值;" 解析
type FilterRequest struct {
	ColumnID   string               `json:"columnId"`
	Operator   model.FilterOperator `json:"operator"`
	Value      string               `json:"value"`
	Expression string               `json:"expression"`
}

// CreateFilter 追加筛选条件
// POST /api/sheets/:id/filters
func (h *Handler) CreateFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	var (
		f   model.Filter
		err error
	)
	if strings.TrimSpace(req.Expression) != "" {
		f, err = s.AddFilterExpression(req.Expression)
	} else {
		f, err = s.AddFilter(req.ColumnID, req.Operator, req.Value)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// UpdateFilter 修改筛选条件
// PATCH /api/sheets/:id/filters/:filterId
func (h *Handler) UpdateFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	f, err := s.UpdateFilter(model.Filter{
		ID:       c.Param("filterId"),
		ColumnID: req.ColumnID,
		Operator: req.Operator,
		Value:    req.Value,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteFilter 删除筛选条件
// DELETE /api/sheets/:id/filters/:filterId
func (h *Handler) DeleteFilter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveFilter(c.Param("filterId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OrderingRequest 排序 / 分组请求
type OrderingRequest struct {
	ColumnID string          `json:"columnId" binding:"required"`
	Order    model.SortOrder `json:"order"`
	IsLocked bool            `json:"isLocked"`
}

func bindOrdering(c *gin.Context) (OrderingRequest, bool) {
	var req OrderingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "columnId is required"})
		return req, false
	}
	if req.Order == "" {
		req.Order = model.OrderAsc
	}
	return req, true
}

// CreateSort 追加排序条件
// POST /api/sheets/:id/sorts
func (h *Handler) CreateSort(c *gin.Context) {
	req, ok := bindOrdering(c)
	if !ok {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.AddSort(req.ColumnID, req.Order)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// UpdateSort 修改排序条件
// PATCH /api/sheets/:id/sorts/:sortId
func (h *Handler) UpdateSort(c *gin.Context) {
	req, ok := bindOrdering(c)
	if !ok {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.UpdateSort(model.Sort{ID: c.Param("sortId"), ColumnID: req.ColumnID, Order: req.Order})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// DeleteSort 删除排序条件
// DELETE /api/sheets/:id/sorts/:sortId
func (h *Handler) DeleteSort(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveSort(c.Param("sortId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateGroup 追加分组条件
// POST /api/sheets/:id/groups
func (h *Handler) CreateGroup(c *gin.Context) {
	req, ok := bindOrdering(c)
	if !ok {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	g, err := s.AddGroup(req.ColumnID, req.Order)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// UpdateGroup 修改分组条件
// PATCH /api/sheets/:id/groups/:groupId
func (h *Handler) UpdateGroup(c *gin.Context) {
	req, ok := bindOrdering(c)
	if !ok {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	g, err := s.UpdateGroup(model.Group{
		ID:       c.Param("groupId"),
		ColumnID: req.ColumnID,
		Order:    req.Order,
		IsLocked: req.IsLocked,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// DeleteGroup 删除分组条件
// DELETE /api/sheets/:id/groups/:groupId
func (h *Handler) DeleteGroup(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveGroup(c.Param("groupId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
