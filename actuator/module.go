// Package actuator exposes health, build info and metrics endpoints next to
// the drmgr API.
package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/drmgr/config"
	"github.com/skekre98/drmgr/core"
	"github.com/skekre98/drmgr/web"
)

const Name = "actuator"

// Info describes the running binary.
type Info struct {
	Name    string
	Version string
}

type module struct {
	info Info
}

func Module(info Info) core.Module { return &module{info: info} }

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c core.Container) error {
	engine := web.Engine(c)
	cfg := core.Get[config.Settings](c)
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg, ok := core.Lookup[*prometheus.Registry](c); ok {
		gatherer = reg
	}
	Routes(engine.Group(cfg.Actuator.BasePath), m.info, cfg, gatherer)
	return nil
}

// Routes registers the actuator endpoints on r.
func Routes(r web.Router, info Info, cfg config.Settings, gatherer prometheus.Gatherer) {
	started := time.Now().UTC()

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status": "UP",
			"checks": []gin.H{},
		})
	})

	r.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    info.Name,
				"version": info.Version,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"started":      started.Format(time.RFC3339),
				"pid":          os.Getpid(),
			},
		})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func (m *module) Start(_ context.Context, _ core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ core.Container) error  { return nil }
