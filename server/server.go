// Package server wires the ingestion and derivation stages behind the HTTP
// endpoints: upload, report, progress, downloads, and accounts.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/salesvision/salesvision/config"
	"github.com/salesvision/salesvision/store"
)

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	log      *logrus.Logger
	sessions *sessionRegistry
	progress *progressRegistry
	router   *gin.Engine
}

// New builds a Server and its routes.
func New(cfg *config.Config, st *store.Store, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		log:      log,
		sessions: newSessionRegistry(time.Duration(cfg.Session.TTLSeconds) * time.Second),
		progress: newProgressRegistry(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = s.cfg.Upload.MaxSizeBytes

	router.GET("/health", s.handleHealth)

	router.POST("/upload", s.handleUpload)
	router.GET("/report", s.handleReport)
	router.GET("/progress/:id", s.handleProgress)
	router.GET("/download/:filename", s.handleDownload)
	router.GET("/download_report", s.handleDownloadReport)

	router.POST("/register", s.handleRegister)
	router.POST("/login", s.handleLogin)
	router.POST("/logout", s.handleLogout)
	router.GET("/account", s.handleAccount)

	return router
}

// Router exposes the gin engine (used by tests and Run).
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves HTTP on the configured address until the listener fails.
func (s *Server) Run() error {
	s.log.WithField("addr", s.cfg.Server.Addr).Info("server: listening")
	return s.router.Run(s.cfg.Server.Addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
