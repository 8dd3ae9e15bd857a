package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dashembed/auth"
	"dashembed/internal/config"
	"dashembed/internal/metrics"
	"dashembed/server"
	"dashembed/sessions"
	"dashembed/token"
	"dashembed/users"
)

func main() {
	for {
		if err := run(); err != nil {
			stdlog.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	stdlog.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			stdlog.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	directory, err := userDirectory()
	if err != nil {
		return fmt.Errorf("user directory: %w", err)
	}

	authService, err := auth.NewService(auth.Repos{
		Directory: directory,
		Sessions:  sessions.NewInMemoryRepo(),
	}, c.GetSessionMaxAge())
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	m := metrics.New()
	minter := token.NewMinter(c,
		token.WithMetrics(m),
		token.WithHTTPClient(&http.Client{Timeout: c.GetUpstreamTimeout()}),
	)

	handler, err := server.New(c, authService, minter, m)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// userDirectory seeds the login directory from the ALLOWED_USERS JSON env
// var, falling back to the built-in demo users.
func userDirectory() (users.Directory, error) {
	raw := os.Getenv("ALLOWED_USERS")
	if raw == "" {
		log.Warn().Msg("ALLOWED_USERS not set, using demo user directory")
		return users.DemoDirectory(), nil
	}
	entries, err := users.ParseDirectoryJSON([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing ALLOWED_USERS: %w", err)
	}
	log.Info().Int("users", len(entries)).Msg("loaded user directory")
	return users.NewStaticDirectory(entries...), nil
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func listenAndServe(server *http.Server) error {
	stdlog.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
