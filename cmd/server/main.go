// cmd/server/main.go
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/numberhunt/server/internal/auth"
	"github.com/numberhunt/server/internal/cache"
	"github.com/numberhunt/server/internal/database"
	"github.com/numberhunt/server/internal/game"
	"github.com/numberhunt/server/internal/handlers"
	"github.com/numberhunt/server/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	// Question pool: Postgres when configured, builtin set otherwise.
	var pool game.QuestionPool
	if os.Getenv("PG_HOST") != "" {
		db, err := database.Connect(ctx)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()
		pool = database.NewQuestionStore(db)
		logger.Info("question pool: postgres")
	} else {
		seed, err := game.NewSeed()
		if err != nil {
			log.Fatalf("failed to seed rng: %v", err)
		}
		pool = game.NewStaticPool(builtinQuestions(), builtinDecoys(), rand.New(rand.NewSource(seed)))
		logger.Info("question pool: builtin")
	}

	// Event sink: push to the persistence queue when Redis is configured.
	var sink game.EventSink
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		sink = func(ev game.Event) {
			if err := cache.PublishRoomEvent(context.Background(), ev); err != nil {
				logger.Warnf("failed to publish event %d for room %v: %v", ev.Seq, ev.RoomID, err)
			}
		}
		logger.Info("event sink: redis queue")
	}

	rs := handlers.NewRoomServer(pool, sink)
	rs.Logf = logger.Infof

	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.Handler {
		return middleware.RecoverMiddleware(logger)(middleware.LogMiddleware(logger)(h))
	}

	// session endpoints
	mux.Handle("/session/guest", wrap(handlers.GuestSessionHandler()))

	// room endpoints
	mux.Handle("/rooms/create", wrap(handlers.CreateRoomHandler(rs)))
	mux.Handle("/rooms/list", wrap(handlers.ListRoomsHandler(rs)))
	mux.Handle("/rooms/join", wrap(handlers.JoinByCodeHandler(rs)))

	// room event stream
	mux.Handle("/rooms/ws/", wrap(handlers.RoomWSHandler(logger, rs)))

	// per-room actions and views
	mux.Handle("/rooms/", wrap(handlers.RoomActionHandler(rs)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
