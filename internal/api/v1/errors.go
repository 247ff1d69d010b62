package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chompchompbalboa/simplesheet/internal/exporter"
	"github.com/chompchompbalboa/simplesheet/internal/parser"
	"github.com/chompchompbalboa/simplesheet/internal/service/history"
	"github.com/chompchompbalboa/simplesheet/internal/service/session"
	"github.com/chompchompbalboa/simplesheet/internal/store"
)

// writeError 将领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrSheetNotFound),
		errors.Is(err, session.ErrUnknownCondition),
		errors.Is(err, session.ErrUnknownView),
		errors.Is(err, exporter.ErrUnknownView):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUnknownColumn),
		errors.Is(err, session.ErrUnknownRow),
		errors.Is(err, session.ErrUnknownCell),
		errors.Is(err, session.ErrInvalidOperator),
		errors.Is(err, session.ErrInvalidOrder),
		errors.Is(err, session.ErrInvalidType),
		errors.Is(err, parser.ErrInvalidFilterExpression):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrNothingToUndo),
		errors.Is(err, history.ErrNothingToRedo):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("api: %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
