package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/navigator"
	"github.com/jusunglee/penzgtu-go/internal/upstream"
	"github.com/jusunglee/penzgtu-go/pkg/penzgtu"
)

// Response statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Messages returned when the upstream succeeds without a data object
const (
	msgNoLevels    = "PenzGTU API returned no errors, but data object contains no levels"
	msgNoWeekNum   = "PenzGTU API returned no errors, but data object contains no weeknum"
	msgNoTimetable = "PenzGTU API returned no errors, but data field is empty"
	msgNoGroups    = "No groups found for given parameters"
)

// Handler handles HTTP requests
type Handler struct {
	client penzgtu.Client
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(client penzgtu.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleIndexPost).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/getWeekNum", h.handleWeekNum).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getLevels", h.metaHandler(navigator.EndpointLevels, extractLevels)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getForms", h.metaHandler(navigator.EndpointForms, extractForms)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getTypes", h.metaHandler(navigator.EndpointTypes, extractTypes)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getYears", h.metaHandler(navigator.EndpointYears, extractYears)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getStreams", h.metaHandler(navigator.EndpointStreams, extractStreams)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getGroups", h.metaHandler(navigator.EndpointGroups, extractGroups)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/getTimetable", h.handleTimetable).Methods(http.MethodPost, http.MethodOptions)
}

// Response is the envelope of every API response
type Response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{
		Status:  StatusOK,
		Message: "Example timetable API. Keep in mind -- only POST requests are accepted.",
	})
}

func (h *Handler) handleIndexPost(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{Status: StatusOK, Message: "Example timetable API."})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{Status: StatusOK, Message: "ok"})
}

func (h *Handler) handleWeekNum(w http.ResponseWriter, r *http.Request) {
	week, err := h.client.GetWeekNum(r.Context())
	if err != nil {
		h.writeFailure(w, r, err, msgNoWeekNum)
		return
	}
	h.writeData(w, week)
}

// extractor pulls the requested slice out of the metadata tree
type extractor func(meta *models.TimetableMeta, q models.TimetableQuery) (any, error)

// metaHandler validates the request for endpoint, fetches the metadata tree
// and responds with what extract returns.
func (h *Handler) metaHandler(endpoint navigator.Endpoint, extract extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.parseQuery(w, r, endpoint)
		if !ok {
			return
		}

		meta, err := h.client.GetTimetableMeta(r.Context())
		if err != nil {
			h.writeFailure(w, r, err, msgNoLevels)
			return
		}

		data, err := extract(meta, q)
		if err != nil {
			h.writeFailure(w, r, err, msgNoLevels)
			return
		}
		h.writeData(w, data)
	}
}

func extractLevels(meta *models.TimetableMeta, _ models.TimetableQuery) (any, error) {
	return navigator.Levels(meta), nil
}

func extractForms(meta *models.TimetableMeta, q models.TimetableQuery) (any, error) {
	return navigator.Forms(meta, q.Level)
}

func extractTypes(meta *models.TimetableMeta, q models.TimetableQuery) (any, error) {
	return navigator.Types(meta, q.Level, q.Form)
}

func extractYears(meta *models.TimetableMeta, q models.TimetableQuery) (any, error) {
	return navigator.Years(meta, q.Level, q.Form, q.Type)
}

func extractStreams(meta *models.TimetableMeta, q models.TimetableQuery) (any, error) {
	return navigator.Streams(meta, q.Level, q.Form, q.Type)
}

func extractGroups(meta *models.TimetableMeta, q models.TimetableQuery) (any, error) {
	return navigator.Groups(meta, q)
}

func (h *Handler) handleTimetable(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r, navigator.EndpointTimetable)
	if !ok {
		return
	}

	timetable, err := h.client.GetTimetable(r.Context(), q)
	if err != nil {
		h.writeFailure(w, r, err, msgNoTimetable)
		return
	}
	h.writeData(w, timetable)
}

// parseQuery decodes and validates the request parameters.
// On failure the error response has already been written.
func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request, endpoint navigator.Endpoint) (models.TimetableQuery, bool) {
	q, err := decodeQuery(r)
	if err == nil {
		err = navigator.Validate(q, endpoint)
	}
	if err != nil {
		h.writeFailure(w, r, err, "")
		return models.TimetableQuery{}, false
	}
	return q, true
}

func (h *Handler) writeData(w http.ResponseWriter, data any) {
	h.writeJSON(w, Response{Status: StatusOK, Data: data})
}

// writeFailure maps err to an error envelope. noData is the message used
// when the upstream succeeded without a data object.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error, noData string) {
	var (
		usage   *navigator.UsageError
		upErr   *upstream.Error
		message string
	)

	switch {
	case errors.As(err, &usage):
		message = usage.Message
	case errors.Is(err, penzgtu.ErrNoData):
		message = noData
	case errors.Is(err, navigator.ErrNoGroups):
		message = msgNoGroups
	case errors.Is(err, navigator.ErrNotFound):
		message = err.Error()
	case errors.As(err, &upErr):
		message = upErr.Error()
	default:
		message = err.Error()
	}

	h.logger.Debug("request failed", "path", r.URL.Path, "error", err)
	h.writeError(w, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string) {
	h.writeJSON(w, Response{Status: StatusError, Message: message})
}
