package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hellofresh/health-go/v4"

	"github.com/circleci/mongoprofiler/httpserver/ginrouter"
	"github.com/circleci/mongoprofiler/system"
)

const checkTimeout = 5 * time.Second

type API struct {
	router *gin.Engine
}

func New(ctx context.Context, checked []system.HealthChecker) (*API, error) {
	r := ginrouter.Default(ctx, "admin")

	live, ready, err := newHealth(checked)
	if err != nil {
		return nil, fmt.Errorf("failed to create health checks: %w", err)
	}
	r.GET("/live", gin.WrapH(live.Handler()))
	r.GET("/ready", gin.WrapH(ready.Handler()))

	registerPprof(r.Group("/debug/pprof"))

	return &API{router: r}, nil
}

func (a *API) Handler() http.Handler {
	return a.router
}

// newHealth splits the checks into the liveness and readiness sets.
func newHealth(checked []system.HealthChecker) (live, ready *health.Health, err error) {
	live, err = health.New()
	if err != nil {
		return nil, nil, err
	}
	ready, err = health.New()
	if err != nil {
		return nil, nil, err
	}

	register := func(h *health.Health, name string, check func(ctx context.Context) error) error {
		if check == nil {
			return nil
		}
		return h.Register(health.Config{
			Name:    name,
			Timeout: checkTimeout,
			Check:   check,
		})
	}

	for _, c := range checked {
		name, readyCheck, liveCheck := c.HealthChecks()
		if err := register(ready, name, readyCheck); err != nil {
			return nil, nil, err
		}
		if err := register(live, name, liveCheck); err != nil {
			return nil, nil, err
		}
	}
	return live, ready, nil
}

func registerPprof(r gin.IRoutes) {
	r.GET("/", gin.WrapF(pprof.Index))
	r.GET("/:profile", func(c *gin.Context) {
		switch c.Param("profile") {
		case "cmdline":
			pprof.Cmdline(c.Writer, c.Request)
		case "profile":
			pprof.Profile(c.Writer, c.Request)
		case "symbol":
			pprof.Symbol(c.Writer, c.Request)
		case "trace":
			pprof.Trace(c.Writer, c.Request)
		default:
			// the runtime profiles, such as heap, are served by name from the index
			pprof.Index(c.Writer, c.Request)
		}
	})
}
