package export

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fieldbook/internal/history"
)

// OrderLister is the slice of the history store the export handler needs.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]history.OrderRecord, error)
}

// Handler serves the full order history as an xlsx download.
func Handler(store OrderLister, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := store.ListOrders(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("list orders for export error")
			http.Error(w, "failed to load order history", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := WriteOrders(w, orders); err != nil {
			// Headers are already sent; all we can do is log.
			logger.Error().Err(err).Msg("write export workbook error")
		}
	}
}
