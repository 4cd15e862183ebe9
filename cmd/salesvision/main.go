package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/salesvision/salesvision/config"
	"github.com/salesvision/salesvision/server"
	"github.com/salesvision/salesvision/store"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address override (e.g. :8080)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Sales Vision: CSV sales analytics

Usage:
  salesvision --config config.yaml
  salesvision --addr :9090

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  SALESVISION_*    Overrides config keys (SALESVISION_SERVER_ADDR, ...)
`)
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("salesvision", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer st.Close()

	srv := server.New(cfg, st, log)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
