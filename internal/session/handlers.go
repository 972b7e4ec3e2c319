package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/handlers"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/solver"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

var tracer = otel.Tracer("session")

var errInvalidBody = errors.New("invalid request body")

// Handler serves the /sessions endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// eventFunc applies one UI event. It returns the record the event finalized, if any.
type eventFunc func(ctx context.Context, s *Session, w http.ResponseWriter, r *http.Request) (*calculator.HistoryRecord, error)

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Create handles POST /sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := h.store.Create()

	observability.LoggerWithTrace(ctx).Info("session created",
		zap.String("session_id", s.ID()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	eventCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "create")))

	handlers.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

// Get handles GET /sessions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// Delete handles DELETE /sessions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		handlers.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /sessions/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Records: s.History()})
}

// ---------------------------------------------------------------------------
// UI events
// ---------------------------------------------------------------------------

// event wraps fn with session lookup, a span, metrics, logging and the
// standard response.
func (h *Handler) event(name string, fn eventFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := observability.LoggerWithTrace(ctx)
		requestID := observability.RequestIDFromContext(ctx)
		id := chi.URLParam(r, "id")

		ctx, span := tracer.Start(ctx, "session."+name,
			trace.WithAttributes(
				attribute.String("session.id", id),
				attribute.String("session.event", name),
				attribute.String("request.id", requestID),
			),
		)
		defer span.End()

		s, err := h.store.Get(id)
		if err != nil {
			fail(ctx, span, logger, name, err, w)
			return
		}

		rec, err := fn(ctx, s, w, r)
		if err != nil {
			fail(ctx, span, logger, name, err, w)
			return
		}

		snap := s.Snapshot()
		eventCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
		span.SetAttributes(attribute.String("session.display", snap.Display))
		span.SetStatus(codes.Ok, "")

		logger.Debug("session event applied",
			zap.String("event", name),
			zap.String("session_id", id),
			zap.String("display", snap.Display),
			zap.String("request_id", requestID),
		)

		handlers.WriteJSON(w, http.StatusOK, EventResponse{Session: snap, Record: rec})
	}
}

func pressDigit(_ context.Context, s *Session, w http.ResponseWriter, r *http.Request) (*calculator.HistoryRecord, error) {
	var req DigitRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		return nil, err
	}
	return nil, s.PressDigit(req.Token)
}

func pressOperation(_ context.Context, s *Session, w http.ResponseWriter, r *http.Request) (*calculator.HistoryRecord, error) {
	var req OperationRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		return nil, err
	}
	op, err := calculator.ParseOperation(req.Op)
	if err != nil {
		return nil, err
	}
	return nil, s.PressOperation(op)
}

func pressEqual(ctx context.Context, s *Session, w http.ResponseWriter, r *http.Request) (*calculator.HistoryRecord, error) {
	var req EqualRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		return nil, err
	}

	rec, ok := s.PressEqual(ctx, req.Explain)
	if !ok {
		return nil, nil
	}

	calculator.RecordOperation(ctx, "equal", calculator.ParseDisplay(rec.Result), 0)
	return &rec, nil
}

func toggleSign(_ context.Context, s *Session, _ http.ResponseWriter, _ *http.Request) (*calculator.HistoryRecord, error) {
	s.ToggleSign()
	return nil, nil
}

func clearAll(_ context.Context, s *Session, _ http.ResponseWriter, _ *http.Request) (*calculator.HistoryRecord, error) {
	s.ClearAll()
	return nil, nil
}

func toggleMode(_ context.Context, s *Session, _ http.ResponseWriter, _ *http.Request) (*calculator.HistoryRecord, error) {
	s.ToggleMode()
	return nil, nil
}

func toggleHistory(_ context.Context, s *Session, _ http.ResponseWriter, _ *http.Request) (*calculator.HistoryRecord, error) {
	s.ToggleHistory()
	return nil, nil
}

func clearHistory(_ context.Context, s *Session, _ http.ResponseWriter, _ *http.Request) (*calculator.HistoryRecord, error) {
	s.ClearHistory()
	return nil, nil
}

func solve(ctx context.Context, s *Session, w http.ResponseWriter, r *http.Request) (*calculator.HistoryRecord, error) {
	var req SolveRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := s.Solve(ctx, req.Prompt)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrSolveInProgress):
		return nil, err
	case err != nil:
		recordSolve(ctx, "failure", elapsed)
		return nil, err
	}

	recordSolve(ctx, "success", elapsed)
	return &rec, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// decodeBody reads a JSON body into dst. An empty body is accepted when optional.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func fail(ctx context.Context, span trace.Span, logger *zap.Logger, event string, err error, w http.ResponseWriter) {
	status, msg := errorStatus(err)
	observability.RecordError(ctx, span, logger, errorCounter, event, msg, err, status, w)
}

// errorStatus maps an event error to its HTTP status and user-facing message.
func errorStatus(err error) (int, string) {
	var solveErr *solver.Error
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, ErrSolveInProgress):
		return http.StatusConflict, "a solve is already in progress"
	case errors.Is(err, ErrEmptyPrompt):
		return http.StatusBadRequest, "prompt is empty"
	case errors.Is(err, calculator.ErrInvalidToken):
		return http.StatusBadRequest, "invalid digit token"
	case errors.Is(err, calculator.ErrUnknownOperation):
		return http.StatusBadRequest, "unknown operation"
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, solver.ErrRateLimited),
		errors.Is(err, solver.ErrCircuitOpen),
		errors.Is(err, solver.ErrUnavailable):
		return http.StatusServiceUnavailable, "solver unavailable, try again later"
	case errors.As(err, &solveErr):
		return http.StatusBadGateway, "failed to solve word problem"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
