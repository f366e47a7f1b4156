package server

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"walletid/internal/crypto"
	"walletid/internal/domain"
	"walletid/internal/metrics"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// Config configures the verification server.
type Config struct {
	Listen        string  // e.g. 127.0.0.1:8787
	RatePerSecond float64 // per client; <= 0 disables limiting
	Burst         int
}

// Server serves the verification API.
type Server struct {
	cfg     Config
	grants  domain.GrantService
	codec   crypto.DIDCodec
	metrics *metrics.Metrics
	limiter *clientLimiter
	log     *slog.Logger
	now     func() time.Time
}

// New returns a Server. m may be nil, in which case /metrics is not served.
func New(cfg Config, grants domain.GrantService, codec crypto.DIDCodec, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		grants:  grants,
		codec:   codec,
		metrics: m,
		limiter: newClientLimiter(cfg.RatePerSecond, cfg.Burst, 0),
		log:     log,
		now:     time.Now,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/grants/verify", s.limited(s.handleVerifyGrant))
	mux.Handle("POST /v1/signatures/verify", s.limited(s.handleVerifySignature))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("verification server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("verification server stopped")
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) limited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r), s.now()) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	})
}

type verifyGrantRequest struct {
	Grant  json.RawMessage `json:"grant"`
	Issuer domain.DID      `json:"issuer"`
}

type verifyGrantResponse struct {
	Valid   bool `json:"valid"`
	Expired bool `json:"expired"`
	Revoked bool `json:"revoked"`
}

func (s *Server) handleVerifyGrant(w http.ResponseWriter, r *http.Request) {
	var req verifyGrantRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var g domain.AccessGrant
	if err := json.Unmarshal(req.Grant, &g); err != nil {
		writeError(w, http.StatusBadRequest, "grant: "+err.Error())
		return
	}
	st, err := s.grants.CheckGrant(r.Context(), g, req.Issuer)
	if errors.Is(err, domain.ErrInvalidFormat) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error("grant check failed", "grant_id", g.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "grant check failed")
		return
	}
	writeJSON(w, http.StatusOK, verifyGrantResponse{Valid: st.Valid, Expired: st.Expired, Revoked: st.Revoked})
}

type verifySignatureRequest struct {
	DID       domain.DID `json:"did"`
	Message   string     `json:"message"`
	Signature string     `json:"signature"`
}

type verifySignatureResponse struct {
	Valid bool `json:"valid"`
}

func (s *Server) handleVerifySignature(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req verifySignatureRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pub, err := s.codec.Decode(req.DID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, "message must be base64")
		return
	}
	valid := false
	if sig, err := hex.DecodeString(req.Signature); err == nil {
		valid = crypto.Verify(pub[:], msg, sig)
	}
	s.metrics.Observe(metrics.OpVerify, start, nil)
	writeJSON(w, http.StatusOK, verifySignatureResponse{Valid: valid})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
