package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"puppetmask/internal/api"
	"puppetmask/internal/logging"
	"puppetmask/internal/services"
	"puppetmask/internal/storage"
	"puppetmask/internal/storage/history"
)

const requestIDHeader = "X-Request-ID"

// maxBodyBytes caps a save-mask request body.
var maxBodyBytes int64 = 50 << 20

// Backend is the storage the API serves.
type Backend interface {
	storage.Service
	History(ctx context.Context, puppetID string, limit int) ([]history.Entry, error)
}

// recordingLocator is implemented by backends that can name the video a
// frame came from.
type recordingLocator interface {
	Root() string
	LocateRecording(puppetID string) (storage.Recording, error)
}

// frameInvalidator is implemented by backends that cache extracted frames.
type frameInvalidator interface {
	InvalidateFrame(puppetID string) error
}

type statusProvider interface {
	Status(ctx context.Context) api.DaemonStatus
}

type handler struct {
	backend Backend
	status  statusProvider
	logger  *slog.Logger
}

// NewHandler builds the /api routes over backend. status may be nil, in
// which case /api/status reports only that the server is up.
func NewHandler(token string, backend Backend, status statusProvider, logger *slog.Logger) http.Handler {
	h := &handler{
		backend: backend,
		status:  status,
		logger:  logging.NewComponentLogger(logger, "api-server"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/puppets", h.handleListPuppets)
	mux.HandleFunc("GET /api/puppets/{id}/mask", h.handleMaskStatus)
	mux.HandleFunc("POST /api/puppets/{id}/mask", h.handleSaveMask)
	mux.HandleFunc("GET /api/puppets/{id}/mask/history", h.handleHistory)
	mux.HandleFunc("GET /api/puppets/{id}/frame", h.handleFrame)
	mux.HandleFunc("GET /api/puppets/{id}/existing-mask", h.handleExistingMask)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, http.StatusNotFound, "not found")
	})
	return h.withRequestID(authMiddleware(token, mux))
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		h.writeJSON(w, r, http.StatusOK, api.DaemonStatus{Running: true})
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.status.Status(r.Context()))
}

func (h *handler) handleListPuppets(w http.ResponseWriter, r *http.Request) {
	puppets, err := h.backend.ListPuppets(r.Context())
	if err != nil {
		h.fail(w, r, "list puppets", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.FromPuppets(puppets))
}

func (h *handler) handleMaskStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.backend.MaskStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "check mask", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.FromMaskStatus(status))
}

func (h *handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if inv, ok := h.backend.(frameInvalidator); ok {
			if err := inv.InvalidateFrame(id); err != nil {
				h.fail(w, r, "refresh video frame", err)
				return
			}
		}
	}
	data, err := h.backend.FetchFrame(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get video frame", err)
		return
	}
	resp := api.FrameResponse{FrameData: api.EncodeDataURL(api.PNGMediaType, data)}
	if locator, ok := h.backend.(recordingLocator); ok {
		if rec, err := locator.LocateRecording(id); err == nil {
			if rel, err := filepath.Rel(locator.Root(), rec.Path); err == nil {
				resp.VideoPath = filepath.ToSlash(rel)
			}
		}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *handler) handleExistingMask(w http.ResponseWriter, r *http.Request) {
	data, found, err := h.backend.FetchExistingMask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "get existing mask", err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.ExistingMaskResponse{MaskData: api.EncodeDataURL(api.PNGMediaType, data)})
}

func (h *handler) handleSaveMask(w http.ResponseWriter, r *http.Request) {
	var req api.SaveMaskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("Mask data too large (limit %d bytes)", tooLarge.Limit))
			return
		}
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.MaskData) == "" {
		h.writeError(w, r, http.StatusBadRequest, "No mask data provided")
		return
	}
	data, err := api.DecodeDataURL(req.MaskData)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.backend.SaveMask(r.Context(), r.PathValue("id"), data)
	if err != nil {
		h.fail(w, r, "upload mask", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.SaveMaskResponse{Success: result.Success, URL: result.Location})
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.backend.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.fail(w, r, "list mask history", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, api.FromHistory(entries))
}

// withRequestID assigns a correlation id per request, echoes it in the
// response, and logs the request once it completes.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := services.WithRequestID(r.Context(), rid)
		r = r.WithContext(ctx)
		w.Header().Set(requestIDHeader, rid)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)
		logging.WithContext(ctx, h.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := services.HTTPStatus(err)
	logger := logging.WithContext(r.Context(), h.logger)
	if id := r.PathValue("id"); id != "" {
		logger = logger.With(logging.String(logging.FieldPuppetID, id))
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logger, action+" failed", "api_request_failed",
			logging.Error(err),
			logging.Int("status", status),
			logging.String(logging.FieldErrorHint, "check the daemon log and the bucket directory"),
		)
	} else {
		logger.Info(action+" rejected", logging.Error(err), logging.Int("status", status))
	}
	h.writeError(w, r, status, err.Error())
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), h.logger).Error("failed to encode response", logging.Error(err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, api.ErrorResponse{Error: message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

type apiServer struct {
	bind   string
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, h http.Handler, logger *slog.Logger) *apiServer {
	return &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		server: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}
