package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/taskapi/internal/auth"
	"github.com/Tomlord1122/taskapi/internal/database"
	"github.com/Tomlord1122/taskapi/internal/metrics"
	"github.com/Tomlord1122/taskapi/internal/service"
)

// TokenAuthority is satisfied by *auth.TokenService.
type TokenAuthority interface {
	Issue(userID uint, username string) (string, error)
	Validate(token string) (*auth.Identity, error)
}

// Options carries everything the HTTP layer depends on.
type Options struct {
	Port           int
	AllowedOrigins []string

	UserService service.UserService
	TodoService service.TodoService
	Tokens      TokenAuthority
	DB          database.Service
	Metrics     *metrics.Metrics
}

type Server struct {
	port           int
	allowedOrigins []string
	userService    service.UserService
	todoService    service.TodoService
	tokens         TokenAuthority
	db             database.Service
	metrics        *metrics.Metrics
}

func New(opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		port:           opts.Port,
		allowedOrigins: opts.AllowedOrigins,
		userService:    opts.UserService,
		todoService:    opts.TodoService,
		tokens:         opts.Tokens,
		db:             opts.DB,
		metrics:        m,
	}
}

// NewServer wraps the routes in an *http.Server listening on the configured port.
func NewServer(opts Options) *http.Server {
	appServer := New(opts)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
