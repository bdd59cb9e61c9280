package server

import (
	"context"
	"net/http"
)

type Server interface {
	Handle(path string, handler http.Handler, methods ...string)
	Run(ctx context.Context) error
	Address() string
}
