package mock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultPort = 8080
	// BasePath is where the auth routes are mounted.
	BasePath = "/api"
)

// Server is an in-memory Tracker auth service.
type Server struct {
	port       int
	delay      time.Duration
	verbose    bool
	bcryptCost int
	secret     []byte
	tokenTTL   time.Duration

	users    *store
	tokens   *signer
	validate *validator.Validate
	handler  http.Handler
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables request logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

// WithBcryptCost sets the password hashing cost. Values outside bcrypt's
// range fall back to bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// WithSecret sets the token signing key. Without it a random key is used, so
// tokens do not survive a restart.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

// NewServer creates a new mock auth service
func NewServer(opts ...Option) *Server {
	s := &Server{
		port:       DefaultPort,
		bcryptCost: bcrypt.DefaultCost,
		users:      newStore(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bcryptCost < bcrypt.MinCost || s.bcryptCost > bcrypt.MaxCost {
		s.bcryptCost = bcrypt.DefaultCost
	}
	s.tokens = newSigner(s.secret, s.tokenTTL)
	s.handler = s.routes()
	return s
}

// Handler returns the service's router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Users returns the number of registered accounts.
func (s *Server) Users() int {
	return s.users.count()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.verbose {
		r.Use(s.logRequests)
	}
	if s.delay > 0 {
		r.Use(s.delayResponses)
	}

	r.Route(BasePath+"/auth", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/check-email", s.handleCheckEmail)
		r.Post("/forgot-password", s.handleForgotPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/validate-token", s.handleValidateToken)
			r.Get("/profile", s.handleProfile)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on :%d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done or serving fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Mock auth service listening on http://%s%s", ln.Addr(), BasePath)

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start))
	})
}

func (s *Server) delayResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}
