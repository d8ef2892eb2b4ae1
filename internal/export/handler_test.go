package export

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fieldbook/internal/history"
)

type fakeLister struct {
	orders []history.OrderRecord
	err    error
}

func (f *fakeLister) ListOrders(context.Context) ([]history.OrderRecord, error) {
	return f.orders, f.err
}

func TestHandlerServesWorkbook(t *testing.T) {
	lister := &fakeLister{orders: []history.OrderRecord{
		{OrderID: "ord-1", SubCourtID: 7, SlotKeys: []string{"2025-01-12-14:00"}, Amount: 250, Status: "PENDING", CreatedAt: time.Now()},
	}}

	rec := httptest.NewRecorder()
	Handler(lister, zerolog.Nop())(rec, httptest.NewRequest(http.MethodGet, "/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ord-1", rows[1][0])
}

func TestHandlerListFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("db locked")}

	rec := httptest.NewRecorder()
	Handler(lister, zerolog.Nop())(rec, httptest.NewRequest(http.MethodGet, "/export", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
