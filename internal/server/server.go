package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/core"
)

// QueryResponse is the generate endpoint's reply. Errors are reported as a
// string-valued response rather than a status code; callers cannot
// distinguish failure kinds from this boundary. Preserved as-is because the
// frontend depends on it.
type QueryResponse struct {
	Response string `json:"response"`
}

// Run builds the pipeline and serves the HTTP API.
func Run(cfg *config.Config) error {
	logger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)

	pipeline, err := core.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to AI Nexus Herald API!"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(pipeline.Telemetry.Handler()))

	e.POST("/generate", func(c echo.Context) error {
		state, err := pipeline.Orchestrator.Run(c.Request().Context())
		if err != nil {
			logger.Printf("pipeline run failed: %v", err)
			return c.JSON(http.StatusOK, QueryResponse{Response: fmt.Sprintf("Error occurred: %v", err)})
		}
		return c.JSON(http.StatusOK, QueryResponse{Response: state.Newsletter})
	})

	if cfg.Schedule.CronSpec != "" {
		sched, err := newScheduler(cfg.Schedule.CronSpec, pipeline, logger)
		if err != nil {
			return fmt.Errorf("invalid schedule.cron_spec: %w", err)
		}
		go sched.run()
	}

	logger.Printf("listening on %s", cfg.Server.Address)
	return e.Start(cfg.Server.Address)
}
