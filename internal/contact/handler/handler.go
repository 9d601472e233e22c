package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contactd/internal/contact/models"
	"contactd/pkg/platform/httputil"
	"contactd/pkg/requestcontext"
)

// DefaultMaxBodyBytes caps the request body.
const DefaultMaxBodyBytes = 64 << 10

const (
	msgMethodNotAllowed = "Method not allowed"
	msgUnsupportedType  = "Unsupported media type"
	msgBodyTooLarge     = "Request body too large"
)

// Service runs a raw submission through the pipeline.
type Service interface {
	Submit(ctx context.Context, raw []byte) models.Outcome
}

// Handler serves the contact endpoint.
type Handler struct {
	service      Service
	logger       *slog.Logger
	origins      map[string]struct{}
	maxBodyBytes int64
}

// New creates a contact Handler. Origins in allowedOrigins are echoed in
// Access-Control-Allow-Origin; any other origin gets "*".
func New(service Service, allowedOrigins []string, maxBodyBytes int64, logger *slog.Logger) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:      service,
		logger:       logger,
		origins:      origins,
		maxBodyBytes: maxBodyBytes,
	}
}

// Register mounts /contact on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/contact", func(cr chi.Router) {
		cr.Use(h.cors)
		cr.MethodNotAllowed(h.handleMethodNotAllowed)
		cr.Options("/", h.handlePreflight)
		cr.Post("/", h.handleSubmit)
	})
}

// cors sets the CORS headers on every response from the contact routes.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allow := "*"
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := h.origins[origin]; ok {
				allow = origin
			}
		}
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", allow)
		hdr.Set("Vary", "Origin")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, Authorization")
		hdr.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		hdr.Set("Access-Control-Max-Age", "86400")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	httputil.WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		httputil.WriteError(w, http.StatusUnsupportedMediaType, msgUnsupportedType, nil)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, nil)
			return
		}
		h.logger.ErrorContext(ctx, "failed to read request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, models.MsgServerError, nil)
		return
	}

	writeOutcome(w, h.service.Submit(ctx, raw))
}

// writeOutcome maps a dispatcher Outcome onto the wire.
func writeOutcome(w http.ResponseWriter, out models.Outcome) {
	if out.Succeeded() {
		httputil.WriteJSON(w, http.StatusOK, httputil.OKResponse{OK: true})
		return
	}

	var issues any
	if len(out.Issues) > 0 {
		issues = out.Issues
	}

	switch out.Kind {
	case models.OutcomeInvalid, models.OutcomeDisposable, models.OutcomeSpam:
		httputil.WriteError(w, http.StatusBadRequest, out.Message, issues)
	case models.OutcomeCaptcha:
		httputil.WriteError(w, http.StatusForbidden, out.Message, issues)
	case models.OutcomeTooFast:
		httputil.WriteError(w, http.StatusTooManyRequests, out.Message, nil)
	case models.OutcomeRateLimited:
		if out.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(out.RetryAfter))
		}
		httputil.WriteError(w, http.StatusTooManyRequests, out.Message, nil)
	default:
		httputil.WriteError(w, http.StatusInternalServerError, models.MsgServerError, nil)
	}
}
