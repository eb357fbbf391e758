package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/tednaleid/streamcount/distinct"
)

// counter pairs one estimator with the lock that serializes it; a single
// estimator instance must not see concurrent ingests.
type counter struct {
	mutex     sync.Mutex
	estimator *distinct.Estimator[string]
}

// CounterServer holds named distinct-count estimators behind an HTTP API.
type CounterServer struct {
	mutex    sync.Mutex
	counters map[string]*counter
}

type counterConfig struct {
	Capacity int     `json:"capacity,omitempty"`
	Eps      float64 `json:"eps,omitempty"`
	Delta    float64 `json:"delta,omitempty"`
	Expected uint64  `json:"expected,omitempty"`
}

type counterStatus struct {
	Name      string  `json:"name"`
	Estimate  float64 `json:"estimate"`
	Processed uint64  `json:"processed"`
	Retention float64 `json:"retention"`
	Capacity  int     `json:"capacity"`
}

type observeResult struct {
	Name     string `json:"name"`
	Observed int    `json:"observed"`
}

func NewCounterServer() *CounterServer {
	return &CounterServer{counters: make(map[string]*counter)}
}

func (s *CounterServer) lookup(name string) *counter {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.counters[name]
}

func (s *CounterServer) createCounter(c echo.Context) error {
	name := c.Param("name")

	var config counterConfig
	if err := c.Bind(&config); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var estimator *distinct.Estimator[string]
	var err error
	if config.Capacity > 0 {
		estimator, err = distinct.New[string](config.Capacity)
	} else {
		estimator, err = distinct.NewFromAccuracy[string](config.Eps, config.Delta, config.Expected)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.counters[name]; exists {
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("counter %q already exists", name))
	}
	s.counters[name] = &counter{estimator: estimator}

	return c.JSON(http.StatusCreated, counterStatus{Name: name, Retention: 1, Capacity: estimator.Capacity()})
}

// observe ingests newline-delimited elements from the request body.
func (s *CounterServer) observe(c echo.Context) error {
	name := c.Param("name")
	cnt := s.lookup(name)
	if cnt == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no counter %q", name))
	}

	cnt.mutex.Lock()
	defer cnt.mutex.Unlock()

	observed := 0
	scanner := bufio.NewScanner(c.Request().Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := cnt.estimator.Ingest(scanner.Text()); err != nil {
			if errors.Is(err, distinct.ErrPrecisionExhausted) {
				// the instance can no longer honor its accuracy guarantee;
				// the caller has to recreate it with a larger capacity
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		observed++
	}
	if err := scanner.Err(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, observeResult{Name: name, Observed: observed})
}

func (s *CounterServer) getCounter(c echo.Context) error {
	name := c.Param("name")
	cnt := s.lookup(name)
	if cnt == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no counter %q", name))
	}

	cnt.mutex.Lock()
	defer cnt.mutex.Unlock()
	return c.JSON(http.StatusOK, counterStatus{
		Name:      name,
		Estimate:  cnt.estimator.Estimate(),
		Processed: cnt.estimator.ElementsProcessed(),
		Retention: cnt.estimator.RetentionProbability(),
		Capacity:  cnt.estimator.Capacity(),
	})
}

func (s *CounterServer) deleteCounter(c echo.Context) error {
	name := c.Param("name")

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.counters[name]; !exists {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no counter %q", name))
	}
	delete(s.counters, name)
	return c.NoContent(http.StatusNoContent)
}

func (s *CounterServer) routes(e *echo.Echo) {
	e.PUT("/counters/:name", s.createCounter)
	e.POST("/counters/:name/observe", s.observe)
	e.GET("/counters/:name", s.getCounter)
	e.DELETE("/counters/:name", s.deleteCounter)
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "distinctd",
		Usage: "Serve named distinct-count estimators over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Port to listen on",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e := echo.New()
			NewCounterServer().routes(e)
			return e.Start(fmt.Sprintf(":%d", cmd.Int("port")))
		},
	}
}

func main() {
	if err := setupCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
