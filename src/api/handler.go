package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gocarina/gocsv"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/quantfeeds/candlekeeper/src/models"
	"github.com/quantfeeds/candlekeeper/src/services"
	"github.com/quantfeeds/candlekeeper/src/store"
)

// Handler exposes the candle store and its services over HTTP. It owns
// no state of its own.
type Handler struct {
	store       *store.CandleStore
	ingestion   *services.IngestionService
	sync        *services.SyncService
	diagnostics *services.DiagnosticsService
}

// SetupHandler registers the REST surface on the router.
func SetupHandler(router *mux.Router, candleStore *store.CandleStore, ingestion *services.IngestionService, syncService *services.SyncService, diagnostics *services.DiagnosticsService) {
	h := &Handler{
		store:       candleStore,
		ingestion:   ingestion,
		sync:        syncService,
		diagnostics: diagnostics,
	}

	router.Use(requestIDMiddleware)

	router.HandleFunc("/webhook", h.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/candles", h.handleGetCandles).Methods(http.MethodGet)
	router.HandleFunc("/candles/clear", h.handleClear).Methods(http.MethodDelete)
	router.HandleFunc("/candles/sync", h.handleSync).Methods(http.MethodGet)
	router.HandleFunc("/candles/sync_all", h.handleSyncAll).Methods(http.MethodGet)
	router.HandleFunc("/candles/check_gaps", h.handleCheckGaps).Methods(http.MethodGet)
	router.HandleFunc("/candles/last_update", h.handleLastUpdate).Methods(http.MethodGet)
	router.HandleFunc("/candles/export", h.handleExport).Methods(http.MethodGet)
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type symbolQuery struct {
	Symbol string `schema:"symbol"`
}

func decodeSymbolQuery(r *http.Request) (string, error) {
	var q symbolQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		return "", fmt.Errorf("failed to decode query: %w", err)
	}

	return q.Symbol, nil
}

func setResponse(payload interface{}, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("setResponse: failed to encode payload: %v", err)
	}
}

func setErrorResponse(statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encodeErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encodeErr != nil {
		log.Errorf("setErrorResponse: failed to encode payload: %v", encodeErr)
	}
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		setErrorResponse(http.StatusInternalServerError, fmt.Errorf("failed to read body: %w", err), w)
		return
	}

	if _, err := h.ingestion.IngestRows(string(body)); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidFormat) {
			statusCode = http.StatusBadRequest
		}

		setErrorResponse(statusCode, err, w)
		return
	}

	setResponse(map[string]string{"status": "ok"}, w)
}

type candlesResponse struct {
	Symbol string          `json:"symbol"`
	Values []models.Candle `json:"values"`
}

func (h *Handler) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	symbol, err := decodeSymbolQuery(r)
	if err != nil {
		setErrorResponse(http.StatusBadRequest, err, w)
		return
	}

	// Unknown symbols yield an empty list, not an error.
	candles := h.store.Get(symbol)
	models.SortDescendingByTime(candles)

	setResponse(candlesResponse{Symbol: symbol, Values: candles}, w)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	symbol, err := decodeSymbolQuery(r)
	if err != nil {
		setErrorResponse(http.StatusBadRequest, err, w)
		return
	}

	status := "not_found"
	if h.store.Clear(symbol) {
		status = "cleared"
	}

	setResponse(map[string]string{"status": status, "symbol": symbol}, w)
}

type syncResponse struct {
	Status string `json:"status"`
	Symbol string `json:"symbol"`
	Stored int    `json:"stored"`
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	symbol, err := decodeSymbolQuery(r)
	if err != nil {
		setErrorResponse(http.StatusBadRequest, err, w)
		return
	}

	stored, err := h.sync.SyncOne(r.Context(), symbol)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, models.ErrInvalidSymbolFormat):
			statusCode = http.StatusBadRequest
		case errors.Is(err, models.ErrUpstream):
			statusCode = http.StatusBadGateway
		}

		setErrorResponse(statusCode, err, w)
		return
	}

	setResponse(syncResponse{Status: "synced", Symbol: symbol, Stored: stored}, w)
}

func (h *Handler) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	setResponse(h.sync.SyncAll(r.Context()), w)
}

func (h *Handler) handleCheckGaps(w http.ResponseWriter, r *http.Request) {
	setResponse(h.diagnostics.CheckGaps(), w)
}

func (h *Handler) handleLastUpdate(w http.ResponseWriter, r *http.Request) {
	setResponse(h.diagnostics.LastUpdate(), w)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	symbol, err := decodeSymbolQuery(r)
	if err != nil {
		setErrorResponse(http.StatusBadRequest, err, w)
		return
	}

	candles := h.store.Get(symbol)
	models.SortDescendingByTime(candles)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", symbol+".csv"))

	if err := gocsv.Marshal(&candles, w); err != nil {
		log.Errorf("handleExport: failed to marshal csv: %v", err)
	}
}
