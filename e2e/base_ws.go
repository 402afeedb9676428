package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"drawboard/domain/event"
	"drawboard/infrastructure/ws"
	"drawboard/internal"
	"drawboard/observability"
	"drawboard/runtime"
	"drawboard/runtime/workers"
	"drawboard/services"
)

// BaseWsSuite boots a full in-process board server (engine, fanout, and
// the WebSocket transport) behind an httptest listener, and hands out
// protocol-aware clients to the scenarios.
type BaseWsSuite struct {
	suite.Suite
	Config      Config
	stepTimeout time.Duration

	httpServer *httptest.Server
	cancel     context.CancelFunc
	engine     *runtime.Engine
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.stepTimeout, err = time.ParseDuration(s.Config.StepTimeout)
	s.Require().NoError(err)
}

func (s *BaseWsSuite) SetupTest() {
	log := slog.Default()
	monitor := observability.NewMonitor()
	cfg := internal.Config{
		DefaultRoom:       "main",
		HistoryCapacity:   1000,
		BufferSize:        64,
		SendBufferSize:    64,
		SinkTimeout:       time.Second,
		CursorMinInterval: time.Nanosecond,
		MetricInterval:    time.Hour,
	}

	s.engine = runtime.NewEngine(
		log, monitor,
		runtime.NewSessionRegistry(), runtime.NewRegistry(),
		workers.NewSupervisor(log, 50*time.Millisecond),
		cfg.BufferSize, cfg.HistoryCapacity,
		cfg.CursorMinInterval, cfg.SinkTimeout, cfg.MetricInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = s.engine.Start(ctx) }()

	server := ws.NewServer(cfg, services.NewBoardService(s.engine), log, monitor)
	s.httpServer = httptest.NewServer(server.Handler())
}

func (s *BaseWsSuite) TearDownTest() {
	s.httpServer.Close()
	s.cancel()
	s.engine.Stop()
}

// Dial connects one protocol-aware client, waiting for its init frame.
func (s *BaseWsSuite) Dial(t *testing.T, name string) *wsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	url := "ws" + strings.TrimPrefix(s.httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)

	c := &wsClient{suite: s, name: name, conn: conn}
	init, ok := c.Next(t).(event.Init)
	s.Require().True(ok, "%s: first frame must be the snapshot", name)
	c.Init = init
	return c
}

// wsClient is one connected participant in a scenario.
type wsClient struct {
	suite *BaseWsSuite
	name  string
	conn  *websocket.Conn
	Init  event.Init
}

func (c *wsClient) Close() {
	_ = c.conn.Close()
}

func (c *wsClient) Send(t *testing.T, frame string) {
	t.Helper()
	c.suite.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// Next blocks for the client's next decoded event.
func (c *wsClient) Next(t *testing.T) event.Event {
	t.Helper()
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(c.suite.stepTimeout)))
	_, data, err := c.conn.ReadMessage()
	c.suite.Require().NoError(err, "%s: expected a frame", c.name)

	evt, err := event.Decode(data)
	c.suite.Require().NoError(err)
	return evt
}

// ExpectSilence asserts that no frame reaches this client for a beat.
// A timed-out read poisons the underlying connection, so this must be
// the client's last step in a scenario.
func (c *wsClient) ExpectSilence(t *testing.T) {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, data, err := c.conn.ReadMessage()
	if err == nil {
		c.suite.Require().Failf("unexpected frame", "%s received: %s", c.name, data)
	}
}
