package handler

import (
	"context"
	"encoding/json"
	"io"
	"nburates/internal/domain"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type RateService interface {
	Fetch(ctx context.Context, q domain.RateQuery) (domain.RateTable, error)
	WriteXLSX(table domain.RateTable, w io.Writer) error
}

type Handler struct {
	service RateService
	log     logrus.FieldLogger
	maxDays int
	now     func() time.Time
}

// NewRateHandler builds the rate handler. maxDays limits the span of one request, 0 means
// no limit.
func NewRateHandler(service RateService, log logrus.FieldLogger, maxDays int) *Handler {
	return &Handler{service: service, log: log, maxDays: maxDays, now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}
