package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bonkhost/bonk-room/config"
	"github.com/bonkhost/bonk-room/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	port := flag.Int("port", 0, "listen port, overrides the config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(*configPath, *port); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portOverride != 0 {
		cfg.Port = portOverride
	}
	if cfg.UseHTTPS && (cfg.TLSCert == "" || cfg.TLSKey == "") {
		return errors.New("useHttps requires tlsCert and tlsKey")
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.HandleRoot)

	httpSrv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", httpSrv.Addr, "https", cfg.UseHTTPS, "room", cfg.RoomNameOnStartup)
		var err error
		if cfg.UseHTTPS {
			err = httpSrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return srv.RunConsole(ctx, os.Stdin, os.Stdout)
	})

	// Stop the HTTP server when either a signal arrives or the room decides
	// it is done (console exit, scheduled close finishing).
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-srv.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	if path, saveErr := srv.SaveChatLog(); saveErr != nil {
		slog.Error("save chat log", "err", saveErr)
	} else if path != "" {
		slog.Info("chat log saved", "path", path)
	}

	return err
}
