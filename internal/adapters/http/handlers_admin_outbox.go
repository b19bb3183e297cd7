package web

import (
	"net/http"

	"arena/internal/application/orchestrators"
	"arena/internal/domain/outbox"
)

func outboxProcessor() *orchestrators.OutboxProcessor {
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, settings.Executors)
}

// handleAdminOutboxList handles GET /admin/outbox?status=failed|pending&limit
func handleAdminOutboxList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 50)
	if !ok {
		return
	}
	limit = max(1, min(limit, 100))

	status := r.URL.Query().Get("status")
	if status == "" {
		status = outbox.StatusFailed
	}
	if status != outbox.StatusFailed && status != outbox.StatusPending {
		writeDetail(w, http.StatusBadRequest, "status must be failed or pending")
		return
	}

	entries, err := outboxProcessor().ListEntries(r.Context(), status == outbox.StatusFailed, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxEntriesJSON(entries))
}

// handleAdminOutboxAction handles POST /admin/outbox/{id}/retry and POST /admin/outbox/{id}/abandon
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "outbox entry")
	if !ok {
		return
	}

	var (
		entry outbox.Entry
		err   error
	)
	switch r.PathValue("action") {
	case "retry":
		entry, err = outboxProcessor().ProcessSingle(r.Context(), id)
	case "abandon":
		entry, err = outboxProcessor().AbandonEntry(r.Context(), id)
	default:
		writeDetail(w, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxEntryJSON(entry))
}
