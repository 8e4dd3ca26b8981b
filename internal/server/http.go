package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/lucasew/mdpipe/internal/httputil"
	"github.com/lucasew/mdpipe/internal/markdown"
	"github.com/lucasew/mdpipe/internal/version"
)

// securityHeadersMiddleware adds common security headers to each response.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Rendered fragments never need scripts; images may come from anywhere.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; img-src * data:; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

const shutdownTimeout = 5 * time.Second

type RenderRequest struct {
	Markdown string `json:"markdown"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}

type HttpServer struct {
	renderer     *markdown.Renderer
	wsServer     *WebSocketServer
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewHttpServer(renderer *markdown.Renderer, maxBodyBytes int64, logger *slog.Logger) *HttpServer {
	return &HttpServer{
		renderer:     renderer,
		wsServer:     NewWebSocketServer(renderer, maxBodyBytes, logger),
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (s *HttpServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/render", s.handleRender)
	mux.HandleFunc("/ws", s.wsServer.HandleConnect)
	return securityHeadersMiddleware(mux)
}

// Serve handles connections on l until ctx is cancelled, then waits up to
// shutdownTimeout for in-flight requests.
func (s *HttpServer) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *HttpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Error("failed to write health response", "error", err)
	}
}

func (s *HttpServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteText(w, http.StatusOK, version.String())
}

func (s *HttpServer) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method %s not allowed", r.Method)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", maxErr.Limit)
			return
		}
		httputil.WriteError(w, http.StatusBadRequest, "read body: %v", err)
		return
	}

	if !isJSON(r) {
		if err := httputil.WriteHTML(w, http.StatusOK, s.renderer.Render(string(body))); err != nil {
			s.logger.Error("failed to write render response", "error", err)
		}
		return
	}

	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
		return
	}
	resp := RenderResponse{HTML: string(s.renderer.Render(req.Markdown))}
	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		s.logger.Error("failed to write render response", "error", err)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
