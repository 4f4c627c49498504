package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"

	chatserver "github.com/lumenchat/server"
	"github.com/lumenchat/server/chat"
	"github.com/lumenchat/server/store"
)

func main() {
	config := chatserver.LoadConfig("chat_server.toml")

	// configure our logger
	logrus.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level '%s'", level)
	}
	logrus.SetLevel(level)

	// if we have a DSN entry, try to initialize it
	if config.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(config.SentryDSN, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel})
		if err != nil {
			logrus.Fatalf("Invalid sentry DSN: '%s': %s", config.SentryDSN, err)
		}
		hook.Timeout = 0
		hook.StacktraceConfiguration.Enable = true
		hook.StacktraceConfiguration.Skip = 4
		hook.StacktraceConfiguration.Context = 5
		logrus.StandardLogger().Hooks.Add(hook)
	}

	// open our store, in-memory unless a database file is configured
	var st store.Store
	if config.DB != "" {
		dbStore, err := store.OpenDB(config.DB)
		if err != nil {
			logrus.Fatalf("Error opening database: %s", err)
		}
		st = dbStore
		logrus.WithField("comp", "main").WithField("db", config.DB).Info("using sqlite store")
	} else {
		st = store.NewMemoryStore()
		logrus.WithField("comp", "main").Info("using in-memory store")
	}

	startTime := time.Now()
	chatApp := chat.NewChat(st)

	server := chatserver.NewServer(config)
	server.Router().Post("/auth/login", chatApp.HandleLogin)
	server.Router().Get("/messages", chatApp.HandleMessages)
	server.Router().Get("/users/online", chatApp.HandleOnlineUsers)
	server.Router().Get("/status", func(w http.ResponseWriter, r *http.Request) {
		chat.Status(startTime, config.Version, w, r)
	})
	server.Router().Get("/ws", chatApp.ServeWS)
	err = server.Start()
	if err != nil {
		logrus.Fatalf("Error starting server: %s", err)
	}

	// stop server on signal received
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	logrus.WithField("comp", "main").WithField("signal", <-ch).Info("stopping")
	chatApp.Shutdown()
	server.Stop()
}
