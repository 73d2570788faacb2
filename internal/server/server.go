package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog"

	"github.com/kiesman99/watermark/internal/watermark"
	"github.com/kiesman99/watermark/pkg/blend"
)

const maxUploadMemory = 32 << 20

// Server serves the watermark HTTP API
type Server struct {
	startTime   time.Time
	version     string
	watermarker *watermark.Watermarker
}

// NewServer creates a new server instance
func NewServer(version string, wm *watermark.Watermarker) *Server {
	return &Server{
		startTime:   time.Now(),
		version:     version,
		watermarker: wm,
	}
}

// NewRouter mounts the API at /api/v1 behind the standard middleware stack.
func NewRouter(s *Server, timeout time.Duration, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.GetHealth)
		r.Post("/watermark", s.CreateWatermarkedImage)
	})

	// Legacy health endpoint (without /api/v1 prefix)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	return r
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := HealthResponse{
		Status:    Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger := LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("encode health response")
	}
}

// watermarkParams are the query parameters of POST /watermark.
type watermarkParams struct {
	Weight    int
	Alpha     *bool
	Key       *string
	Placement *string
	X         *int
	Y         *int
	Format    *string
}

func bindWatermarkParams(r *http.Request) (*watermarkParams, error) {
	var p watermarkParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "weight", q, &p.Weight); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "alpha", q, &p.Alpha); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "key", q, &p.Key); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "placement", q, &p.Placement); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "x", q, &p.X); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "y", q, &p.Y); err != nil {
		return nil, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "format", q, &p.Format); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWatermarkedImage implements the main watermark endpoint
func (s *Server) CreateWatermarkedImage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	params, err := bindWatermarkParams(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidParameter, err.Error(), &requestID)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidRequest,
			"Request body must be multipart/form-data", &requestID)
		return
	}

	job, format, err := s.buildJob(r, params)
	if err != nil {
		s.handleError(w, r, err, &requestID)
		return
	}

	result, err := s.watermarker.Render(r.Context(), job, format)
	if err != nil {
		s.handleError(w, r, err, &requestID)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.ImageData)))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.ImageData); err != nil {
		logger := LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("write response")
	}
}

func (s *Server) buildJob(r *http.Request, p *watermarkParams) (*watermark.Job, imaging.Format, error) {
	format := imaging.PNG
	if p.Format != nil {
		switch strings.ToLower(*p.Format) {
		case "png":
		case "jpg", "jpeg":
			format = imaging.JPEG
		default:
			return nil, 0, fmt.Errorf("%w: format must be png or jpg", blend.ErrInvalidParameter)
		}
	}

	base, err := formImage(r, "base")
	if err != nil {
		return nil, 0, err
	}
	if err := blend.ValidateBase(base); err != nil {
		return nil, 0, err
	}

	wm, err := formImage(r, "watermark")
	if err != nil {
		return nil, 0, err
	}
	if err := blend.ValidateWatermark(wm); err != nil {
		return nil, 0, err
	}
	if err := blend.CheckFits(base, wm); err != nil {
		return nil, 0, err
	}

	job := &watermark.Job{
		Base:         base,
		Watermark:    wm,
		Weight:       p.Weight,
		Transparency: blend.NoTransparency(),
		Placement:    blend.Tiled(),
	}

	alpha := p.Alpha != nil && *p.Alpha
	switch {
	case alpha && p.Key != nil:
		return nil, 0, fmt.Errorf("%w: alpha and key are mutually exclusive", blend.ErrInvalidParameter)
	case alpha:
		if !wm.Translucent {
			return nil, 0, fmt.Errorf("%w: the watermark has no alpha channel", blend.ErrInvalidParameter)
		}
		job.Transparency = blend.AlphaTransparency()
	case p.Key != nil:
		key, err := blend.ParseKeyColor(*p.Key, wm)
		if err != nil {
			return nil, 0, err
		}
		job.Transparency = blend.KeyTransparency(key)
	}

	if p.Placement != nil {
		mode, err := blend.ParseMethod(*p.Placement)
		if err != nil {
			return nil, 0, err
		}
		if mode == blend.PlacementFixed {
			if p.X == nil || p.Y == nil {
				return nil, 0, fmt.Errorf("%w: x and y are required for single placement", blend.ErrInvalidParameter)
			}
			job.Placement = blend.Fixed(*p.X, *p.Y)
		}
	}

	return job, format, nil
}

func formImage(r *http.Request, field string) (*blend.Grid, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: form field %q is required", blend.ErrMissingFile, field)
	}
	defer file.Close()

	g, err := blend.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", blend.ErrInvalidImageFormat, field, err)
	}
	return g, nil
}

// handleError maps domain errors to HTTP responses
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, requestID *string) {
	switch {
	case errors.Is(err, blend.ErrMissingFile):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeMissingFile, err.Error(), requestID)
	case errors.Is(err, blend.ErrInvalidImageFormat):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidImageFormat, err.Error(), requestID)
	case errors.Is(err, blend.ErrWatermarkTooLarge):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeWatermarkTooLarge, err.Error(), requestID)
	case errors.Is(err, blend.ErrInvalidParameter):
		s.writeErrorResponse(w, http.StatusBadRequest, CodeInvalidParameter, err.Error(), requestID)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, CodeTimeout, "Request timed out", requestID)
	default:
		logger := LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("watermark failed")
		s.writeErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Internal server error", requestID)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string) {
	response := ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
