package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"nburates/internal/domain"
	"nburates/internal/rate"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RowResponse struct {
	Date  string                  `json:"date"`
	Rates map[string]*json.Number `json:"rates"`
}

type TableResponse struct {
	BaseName string        `json:"base_name"`
	Header   []string      `json:"header"`
	Rows     []RowResponse `json:"rows"`
}

// GetRates serves the rate table for ?currencies=USD,EUR&start=YYYY-MM-DD&end=YYYY-MM-DD.
// Missing dates default to today; format=xlsx returns the workbook instead of JSON.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	format := strings.ToLower(strings.TrimSpace(params.Get("format")))
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatXLSX {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	codes, err := rate.ParseCurrencies(params["currencies"]...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	today := h.now().Format(domain.DateLayout)
	start := strings.TrimSpace(params.Get("start"))
	if start == "" {
		start = today
	}
	end := strings.TrimSpace(params.Get("end"))
	if end == "" {
		end = today
	}

	q, err := domain.NewRateQuery(codes, start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.maxDays > 0 && q.Days() > h.maxDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("date range of %d days exceeds the limit of %d days", q.Days(), h.maxDays))
		return
	}

	table, err := h.service.Fetch(r.Context(), q)
	if err != nil {
		status, msg := fetchErrorStatus(err)
		h.log.WithError(err).WithFields(logrus.Fields{"handler": "GetRates", "currencies": codes}).Error(msg)
		writeError(w, status, msg)
		return
	}

	if format == formatXLSX {
		h.writeXLSX(w, q, table)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(toTableResponse(q, table))
}

func (h *Handler) writeXLSX(w http.ResponseWriter, q domain.RateQuery, table domain.RateTable) {
	var buf bytes.Buffer
	if err := h.service.WriteXLSX(table, &buf); err != nil {
		msg := "ups, couldn't build the workbook this time"
		h.log.WithError(err).WithField("handler", "GetRates").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", q.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func fetchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusBadGateway, "nbu returned inconsistent exchange dates"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusBadGateway, "nbu api is unavailable"
	}
	return http.StatusInternalServerError, "ups, couldn't get rates this time"
}

func toTableResponse(q domain.RateQuery, table domain.RateTable) TableResponse {
	res := TableResponse{
		BaseName: q.BaseName(),
		Header:   table.Header(),
		Rows:     make([]RowResponse, len(table.Rows)),
	}
	for i, row := range table.Rows {
		rates := make(map[string]*json.Number, len(table.Currencies))
		for j, code := range table.Currencies {
			rates[code] = nil
			if row.Rates[j].Valid {
				n := json.Number(row.Rates[j].Decimal.String())
				rates[code] = &n
			}
		}
		res.Rows[i] = RowResponse{Date: row.Date.Format(domain.DateLayout), Rates: rates}
	}
	return res
}
