package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/drmgr/config"
	"github.com/skekre98/drmgr/core"
)

const Name = "web"

func Engine(c core.Container) *gin.Engine {
	return core.Get[*gin.Engine](c)
}

func Module(opts ...Option) core.Module {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	return &webModule{opts: options}
}

type webModule struct {
	opts   Options
	server *http.Server
}

func (m *webModule) Name() string        { return Name }
func (m *webModule) DependsOn() []string { return nil }

func (m *webModule) Configure(c core.Container) error {
	cfg := core.Get[config.Settings](c)
	l := core.Get[*slog.Logger](c)

	r := NewEngine(l, m.opts)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	core.Put[*gin.Engine](c, r)
	core.Put[*http.Server](c, srv)
	m.server = srv
	return nil
}

// NewEngine returns a gin engine with the standard middleware chain and the
// routes from opts.
func NewEngine(l *slog.Logger, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(RecoveryProblem(l))
	r.Use(AccessLog(l))
	r.Use(opts.Middlewares...)

	for _, reg := range opts.Routes {
		reg(r)
	}
	return r
}

// Start binds the listener synchronously so that address errors fail the
// app start, then serves in the background.
func (m *webModule) Start(ctx context.Context, c core.Container) error {
	l := core.Get[*slog.Logger](c)
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	go func() {
		l.Info("http server starting", "addr", ln.Addr().String())
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server error", "error", err)
		}
	}()
	return nil
}

func (m *webModule) Stop(ctx context.Context, c core.Container) error {
	if err := m.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
