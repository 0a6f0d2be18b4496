package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/count"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/middleware"
	"github.com/danielhkuo/quickly-stv/router"
)

func main() {
	if err := cliparse.LoadEnv(); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	switch cfg.Command {
	case cliparse.CommandCount:
		err = count.Run(os.Stdout, cfg)
	default:
		err = serve(cfg)
	}
	if err != nil {
		slog.Error(cfg.Command+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg cliparse.Config) error {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(conn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	mux := router.NewRouter(conn, cfg)

	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("Server closed")
	return nil
}
