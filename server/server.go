package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/neonwhisper/broadcast"
	"github.com/wfunc/neonwhisper/config"
	"github.com/wfunc/neonwhisper/logger"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/monitor"
	"github.com/wfunc/neonwhisper/network"
	"github.com/wfunc/neonwhisper/room"
	"github.com/wfunc/neonwhisper/rpc"
	"github.com/wfunc/neonwhisper/services"
	"github.com/wfunc/neonwhisper/session"
)

const (
	HealthMessage   = "Neon Whisper Multiplayer Server is running!"
	shutdownTimeout = 10 * time.Second
	leaveTimeout    = 5 * time.Second
)

type GameServer struct {
	cfg            config.ServerConfig
	game           config.GameConfig
	engine         *gin.Engine
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	service        *services.GameService
	monitor        *monitor.Monitor
}

func NewGameServer(cfg *config.Config, rooms *room.Manager, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg:            cfg.Server,
		game:           cfg.Game,
		roomManager:    rooms,
		sessionManager: session.NewManager(),
		monitor:        mon,
	}

	out := broadcast.NewRoomBroadcaster(s.sessionManager)
	out.OnDrop = mon.IncMessagesDropped
	s.service = services.NewGameService(rooms, out, mon)

	origins := cfg.Server.AllowedOrigins()
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
	s.engine = s.routes(origins)
	return s
}

func (s *GameServer) routes(origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.handleHealth)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.monitor.Handler()))
	r.GET("/ws", s.handleWebSocket)
	return r
}

// Handler exposes the HTTP routes, mostly for tests.
func (s *GameServer) Handler() http.Handler {
	return s.engine
}

func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

// Run serves HTTP and gRPC until ctx is cancelled, then shuts both down.
func (s *GameServer) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var rpcServer *rpc.Server
	if s.cfg.RPCAddress != "" {
		var err error
		if rpcServer, err = rpc.NewServer(s.cfg.RPCAddress); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Infof("Game server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if rpcServer != nil {
		g.Go(rpcServer.Start)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down game server.")
		if rpcServer != nil {
			rpcServer.SetServing(false)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked websockets are not tracked by http.Server.
		s.sessionManager.CloseAll()
		err := httpServer.Shutdown(shutdownCtx)
		if rpcServer != nil {
			rpcServer.Stop()
		}
		return err
	})

	return g.Wait()
}

func (s *GameServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.Health{
		Status:    "ok",
		Message:   HealthMessage,
		Timestamp: time.Now().UTC(),
	})
}

func (s *GameServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(c.Request.Context(), conn)
}

func (s *GameServer) handleConnection(ctx context.Context, conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn, network.Options{
		SendBuffer:   s.cfg.SendBuffer,
		PingInterval: s.cfg.PingInterval,
		ReadLimit:    s.cfg.ReadLimitBytes,
	})
	sess := session.NewSession(wsConn, s.game.RateLimit, s.game.RateBurst)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infow("connection opened", "remote", wsConn.RemoteAddr(), "session", sess.ID)

	defer func() {
		s.sessionManager.Remove(sess.ID)
		leaveCtx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		s.service.Disconnect(leaveCtx, sess)
		cancel()
		_ = sess.Close()
		s.monitor.DecOnlinePlayers()
		logger.Log.Infow("connection closed", "remote", wsConn.RemoteAddr(), "session", sess.ID)
	}()

	for {
		env, err := wsConn.ReadEnvelope()
		if err != nil {
			if errors.Is(err, network.ErrMalformedFrame) {
				s.service.Reply(sess, "", services.ErrBadRequest)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Debugw("read failed", "session", sess.ID, "error", err)
			}
			return
		}
		if !sess.Allow() {
			s.service.Reply(sess, env.Event, services.ErrRateLimited)
			continue
		}
		s.service.Handle(ctx, sess, env)
	}
}
