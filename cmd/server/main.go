// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/auth"
	"github.com/Nyaru01/skyjo/internal/cache"
	"github.com/Nyaru01/skyjo/internal/database"
	"github.com/Nyaru01/skyjo/internal/handlers"
	"github.com/Nyaru01/skyjo/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		// The game runs without the historian; action history is lost.
		logger.Warnf("redis unavailable, action history disabled: %v", err)
	}

	srv := handlers.NewServer(logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)
	mux.HandleFunc("/user/me", handlers.MeHandler)

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.CreateRoomHandler,
	)))
	mux.Handle("/room/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.ListRoomsHandler,
	)))

	// room websocket
	mux.Handle("/room/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.RoomWSHandler(logger),
	)))

	addr := ":8080"
	if port := os.Getenv("SKYJO_PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
