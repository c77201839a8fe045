package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Books   BookService
	Log     *zap.Logger
	Metrics *Metrics
	// Health reports dependency status for /healthz; nil means always healthy.
	Health         func() error
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewHandler builds the router wrapped in the middleware chain.
func NewHandler(deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	log := deps.Log
	books := &bookHandler{books: deps.Books, log: log}
	m := deps.Metrics

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, log, http.StatusNotFound, "the requested resource could not be found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, log, http.StatusMethodNotAllowed, "the "+r.Method+" method is not supported for this resource")
	})

	router.Handler(http.MethodPost, "/books", m.Instrument("/books", http.HandlerFunc(books.create)))
	router.Handler(http.MethodGet, "/books", m.Instrument("/books", http.HandlerFunc(books.list)))
	router.Handler(http.MethodGet, "/books/:id", m.Instrument("/books/:id", http.HandlerFunc(books.get)))
	router.Handler(http.MethodPut, "/books/:id", m.Instrument("/books/:id", http.HandlerFunc(books.update)))
	router.Handler(http.MethodDelete, "/books/:id", m.Instrument("/books/:id", http.HandlerFunc(books.delete)))

	router.Handler(http.MethodGet, "/healthz", healthHandler(deps.Health, log))
	router.Handler(http.MethodGet, "/metrics", m.Handler())

	middlewares := []func(http.Handler) http.Handler{
		Recovery(log),
		RequestID,
		AccessLog(log),
	}
	if deps.RateLimitRPS > 0 {
		middlewares = append(middlewares, NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst).Middleware)
	}

	return Chain(middlewares...)(router)
}
