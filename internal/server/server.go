package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"filippo.io/csrf"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httputil "github.com/wolfeidau/cloudconsole/internal/http"
	"github.com/wolfeidau/cloudconsole/internal/logger"
	"github.com/wolfeidau/cloudconsole/internal/store"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the HTTP handler.
type Options struct {
	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string

	// Tracing wraps the handler with OpenTelemetry instrumentation.
	Tracing bool
}

// Server serves the console JSON API.
type Server struct {
	stores  store.Stores
	metrics *telemetry.Metrics
}

// New creates a server backed by stores.
func New(stores store.Stores) *Server {
	return &Server{
		stores:  stores,
		metrics: telemetry.GetMetrics(),
	}
}

// Handler returns the HTTP handler for the API with middleware applied.
func (s *Server) Handler(log zerolog.Logger, opts Options) (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /api/organizations", listHandler(s, s.stores.Organizations.List))
	mux.HandleFunc("GET /api/users", listHandler(s, s.stores.Users.List))
	mux.HandleFunc("GET /api/datacenters", listHandler(s, s.stores.Datacenters.List))
	mux.HandleFunc("GET /api/vpcs", listHandler(s, s.stores.Vpcs.List))
	mux.HandleFunc("GET /api/vpcs/{id}", s.getVpc)
	mux.HandleFunc("POST /api/vpcs", s.createVpc)
	mux.HandleFunc("PUT /api/vpcs/{id}", s.updateVpc)
	mux.HandleFunc("DELETE /api/vpcs/{id}", s.deleteVpc)

	// Cross-origin protection rejects unsafe requests made by browsers from
	// origins that are not trusted. Non-browser clients send no Origin or
	// Sec-Fetch-Site header and pass.
	protection := csrf.New()
	for _, origin := range opts.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid trusted origin %q: %w", origin, err)
		}
	}

	var h http.Handler = httputil.Chain(mux,
		httputil.ClientIPMiddleware(),
		logger.Requests(log),
		withCORS(opts.CORSOrigins),
		protection.Handler,
		gzhttp.GzipHandler,
	)

	if opts.Tracing {
		h = otelhttp.NewHandler(h, "cloudconsole-api")
	}

	return h, nil
}

// withCORS adds CORS support for browser clients of the API.
func withCORS(allowedOrigins []string) httputil.Middleware {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "If-None-Match", "Authorization"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
	})
	return middleware.Handler
}

// ConfigureHTTPServer returns an http.Server with conservative timeouts.
func ConfigureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, certFile, keyFile string) error {
	errCh := make(chan error, 1)
	go func() {
		if certFile != "" && keyFile != "" {
			errCh <- srv.ListenAndServeTLS(certFile, keyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
