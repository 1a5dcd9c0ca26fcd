// cmd/historian/main.go runs the standalone historian: it pops game action
// records from the Redis queue and persists them to postgres.
package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/cache"
	"github.com/Nyaru01/skyjo/internal/database"
	"github.com/Nyaru01/skyjo/internal/historian"
)

func main() {
	logger := logrus.New()

	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("redis connect: %v", err)
	}

	svc := historian.NewService(historian.Config{
		BatchSize:     getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushInterval: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity:    time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}, logger)

	go svc.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	svc.Stop()
	logger.Info("historian shutdown complete")
}

// getEnvInt parses an env var as an integer, else a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
