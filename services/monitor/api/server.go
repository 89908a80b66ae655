package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/agent-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	engine         Engine
	journal        Journal
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// SampleReportPayload represents the incoming JSON body on /api/report
type SampleReportPayload struct {
	Samples []struct {
		Metric    string            `json:"metric"`
		Value     float64           `json:"value"`
		Labels    map[string]string `json:"labels"`
		Timestamp int64             `json:"timestamp"`
	} `json:"samples"`
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Engine         Engine
	Journal        Journal
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Engine) {
		return nil, errors.New("nil engine")
	}
	if check.IfNil(args.Journal) {
		return nil, errors.New("nil journal")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		engine:         args.Engine,
		journal:        args.Journal,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")

	// Ingestion endpoints, guarded by the service API key
	api.POST("/report", s.authAPIKey(), s.handleReport)
	api.POST("/evaluate", s.authAPIKey(), s.handleEvaluate)

	// Query endpoints
	api.GET("/metrics", s.handleGetMetrics)
	api.GET("/metrics/:name/history", s.handleGetMetricHistory)
	api.GET("/metrics/:name/transitions", s.handleGetMetricTransitions)
	api.GET("/alerts", s.handleGetAlerts)
	api.GET("/health", s.handleGetHealth)
	api.GET("/stats", s.handleGetStats)
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return nil
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleReport(c *gin.Context) {
	var payload SampleReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Debug("received report", "sender", c.Request.RemoteAddr, "num samples", len(payload.Samples))

	for _, sample := range payload.Samples {
		var timestamp time.Time
		if sample.Timestamp != 0 {
			timestamp = time.Unix(sample.Timestamp, 0)
		}

		err := s.engine.Record(sample.Metric, sample.Value, sample.Labels, timestamp)
		if err != nil {
			log.Warn("failed to record sample", "metric", sample.Metric, "error", err)
			// Continue with others
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleEvaluate(c *gin.Context) {
	s.engine.EvaluateNow()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleGetMetrics(c *gin.Context) {
	type responseMetric struct {
		Name       string            `json:"name"`
		Kind       string            `json:"kind"`
		Unit       string            `json:"unit"`
		Value      float64           `json:"value"`
		RecordedAt int64             `json:"recordedAt"`
		Labels     map[string]string `json:"labels,omitempty"`
	}

	defs := s.engine.Definitions()
	out := make([]responseMetric, 0, len(defs))
	for _, def := range defs {
		latest, err := s.engine.Latest(def.Name)
		if err != nil {
			// metrics with no data yet are omitted
			continue
		}

		out = append(out, responseMetric{
			Name:       def.Name,
			Kind:       string(def.Kind),
			Unit:       def.Unit,
			Value:      latest.Value,
			RecordedAt: latest.Timestamp.Unix(),
			Labels:     latest.Labels,
		})
	}

	c.JSON(http.StatusOK, gin.H{"metrics": out})
}

func (s *server) handleGetMetricHistory(c *gin.Context) {
	name := c.Param("name")
	limit, _ := strconv.Atoi(c.Query("limit"))

	history, err := s.engine.History(name, limit)
	if err != nil {
		if errors.Is(err, common.ErrUnknownMetric) {
			c.JSON(http.StatusNotFound, gin.H{"error": "metric not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metric": name, "history": history})
}

func (s *server) handleGetMetricTransitions(c *gin.Context) {
	name := c.Param("name")
	limit, _ := strconv.Atoi(c.Query("limit"))

	transitions, err := s.journal.GetTransitions(c.Request.Context(), name, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metric": name, "transitions": transitions})
}

func (s *server) handleGetAlerts(c *gin.Context) {
	includeResolved := c.Query("includeResolved") == "true"

	c.JSON(http.StatusOK, gin.H{"alerts": s.engine.Alerts(includeResolved)})
}

func (s *server) handleGetHealth(c *gin.Context) {
	status := s.engine.HealthStatus(c.Request.Context())

	httpCode := http.StatusOK
	if status.Overall == common.StatusCritical {
		httpCode = http.StatusServiceUnavailable
	}

	c.JSON(httpCode, status)
}

func (s *server) handleGetStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Stats())
}
