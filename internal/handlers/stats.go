package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
)

// StatsHandler отдает сводную статистику админской панели.
type StatsHandler struct {
	stats StatsProvider
	log   *logger.Logger
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(stats StatsProvider, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats: stats,
		log:   log,
	}
}

// Dashboard обрабатывает GET /api/admin/stats.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.stats.GetDashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get dashboard stats")
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}
