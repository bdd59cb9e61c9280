package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/librarian/server"
)

type httpServer struct {
	options server.Options
	router  *mux.Router
}

func (s *httpServer) Handle(path string, handler http.Handler, methods ...string) {
	route := s.router.Handle(path, handler)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

func (s *httpServer) Address() string {
	return s.options.Address
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *httpServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.options.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "server listening", "address", s.options.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()

	slog.InfoContext(shutdownCtx, "server shutting down")

	return srv.Shutdown(shutdownCtx)
}

// Router exposes the underlying router for tests.
func (s *httpServer) Router() http.Handler {
	return s.router
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	router := mux.NewRouter()

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for _, m := range ms {
			router.Use(mux.MiddlewareFunc(m))
		}
	}

	return &httpServer{
		options: options,
		router:  router,
	}
}
