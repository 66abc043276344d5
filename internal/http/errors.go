package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/cafe-cart/internal/domain"
	"go.uber.org/zap"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidArgument, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
	{domain.ErrCartNotOpen, http.StatusConflict},
}

// writeError answers with a plain text body. Unclassified errors become a
// 500 whose cause is only logged.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			logger.Warn("http request failed",
				zap.Int("status", es.status),
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Error(err),
			)
			c.String(es.status, publicMessage(err, es.err))
			return
		}
	}

	logger.Error("http request failed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// publicMessage drops the call-site prefixes that precede the sentinel in a
// wrapped error message.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i > 0 {
		return msg[i:]
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	c.String(http.StatusBadRequest, domain.ErrInvalidArgument.Error()+": "+msg)
}
