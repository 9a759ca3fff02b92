// Package api exposes the catalog as a single serverless function. Requests
// arrive under the function prefix, which is stripped before routing.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/app"
	"github.com/princinho/streamcatalog/config"
	"github.com/princinho/streamcatalog/logging"
)

var (
	mu      sync.Mutex
	handler http.Handler
)

func build() (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").WithError(err).Error("invalid configuration")
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	log := logging.New(cfg.LogLevel)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Error("startup failed")
		return nil, err
	}
	return a.Handler, nil
}

// current returns the cached handler, building it if no earlier invocation
// succeeded. Failures are not cached so a cold start that hit a transient
// error recovers on the next request.
func current() (http.Handler, error) {
	mu.Lock()
	defer mu.Unlock()
	if handler != nil {
		return handler, nil
	}
	h, err := build()
	if err != nil {
		return nil, err
	}
	handler = h
	return handler, nil
}

// Handler is the function entry point. The app is built on the first
// successful invocation and reused by warm instances.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := current()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	h.ServeHTTP(w, r)
}
