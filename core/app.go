package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"
)

// ShutdownTimeout bounds how long modules get to stop.
const ShutdownTimeout = 15 * time.Second

type App struct {
	Modules   []Module
	Container Container
	Logger    *slog.Logger
}

func NewApp(logger *slog.Logger, mods ...Module) *App {
	return &App{
		Modules:   mods,
		Container: NewContainer(),
		Logger:    logger,
	}
}

// Run configures and starts every module in dependency order, blocks until
// ctx is done or the process receives SIGINT/SIGTERM, then stops the started
// modules in reverse order.
func (a *App) Run(ctx context.Context) error {
	mods, err := order(a.Modules)
	if err != nil {
		return err
	}

	for _, m := range mods {
		if err := m.Configure(a.Container); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var started []Module
	var runErr error
	for _, m := range mods {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, a.Container); err != nil {
			runErr = err
			break
		}
		started = append(started, m)
	}

	if runErr == nil {
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	for i := len(started) - 1; i >= 0; i-- {
		m := started[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(shutdownCtx, a.Container); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

var (
	ErrDuplicateModule   = errors.New("duplicate module")
	ErrMissingDependency = errors.New("missing dependency")
	ErrDependencyCycle   = errors.New("dependency cycle")
)

// order returns mods so that every module comes after the modules it
// depends on. Ties are broken by name.
func order(mods []Module) ([]Module, error) {
	byName := make(map[string]Module, len(mods))
	for _, m := range mods {
		if _, dup := byName[m.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name())
		}
		byName[m.Name()] = m
	}

	pending := make(map[string]int, len(mods))
	dependents := make(map[string][]string, len(mods))
	for _, m := range mods {
		for _, d := range m.DependsOn() {
			if _, ok := byName[d]; !ok {
				return nil, fmt.Errorf("%w: %s needs %s", ErrMissingDependency, m.Name(), d)
			}
			pending[m.Name()]++
			dependents[d] = append(dependents[d], m.Name())
		}
	}

	var ready []string
	for name := range byName {
		if pending[name] == 0 {
			ready = append(ready, name)
		}
	}

	out := make([]Module, 0, len(mods))
	for len(ready) > 0 {
		slices.Sort(ready)
		name := ready[0]
		ready = ready[1:]
		out = append(out, byName[name])
		for _, next := range dependents[name] {
			if pending[next]--; pending[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(out) != len(mods) {
		var stuck []string
		for name, n := range pending {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
	}
	return out, nil
}
