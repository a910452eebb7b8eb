package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/config"
	"github.com/dsoklic/parley/internal/database"
	"github.com/dsoklic/parley/internal/presence"
	"github.com/dsoklic/parley/internal/repository"
	"github.com/dsoklic/parley/internal/repository/memory"
	postgresrepo "github.com/dsoklic/parley/internal/repository/postgres"
	"github.com/dsoklic/parley/internal/service"
	"github.com/dsoklic/parley/internal/transport/http/handlers"
	"github.com/dsoklic/parley/internal/transport/http/middleware"
	"github.com/dsoklic/parley/internal/transport/ws"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Repositories
	var (
		channelRepo repository.ChannelRepository
		memberRepo  repository.MemberRepository
		banRepo     repository.BanRepository
		inviteRepo  repository.InviteRepository
		userRepo    repository.UserRepository
	)
	switch cfg.Store {
	case "memory":
		store := memory.NewStore()
		channelRepo = store.Channels()
		memberRepo = store.Members()
		banRepo = store.Bans()
		inviteRepo = store.Invites()
		userRepo = store.Users()
		log.Warn().Msg("using in-memory store; state is lost on restart")
	default:
		pool, err := database.Connect(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database")
		}
		defer pool.Close()
		log.Info().Msg("connected to database")

		channelRepo = postgresrepo.NewChannelRepo(pool)
		memberRepo = postgresrepo.NewMemberRepo(pool)
		banRepo = postgresrepo.NewBanRepo(pool)
		inviteRepo = postgresrepo.NewInviteRepo(pool)
		userRepo = postgresrepo.NewUserRepo(pool)
	}

	// Presence directory: one per process, handed around by reference.
	directory := presence.NewDirectory()

	// Services
	channelService := service.NewChannelService(channelRepo, memberRepo, banRepo, inviteRepo)
	dmService := service.NewDMService(channelRepo, memberRepo, userRepo)
	discoveryService := service.NewDiscoveryService(channelRepo, memberRepo, userRepo, directory)

	// WebSocket hub + moderation event delivery
	hub := ws.NewHub(directory, channelService)
	go hub.Run()
	channelService.SetNotifier(ws.NewHubNotifier(hub, directory))

	// Handlers
	channelHandler := handlers.NewChannelHandler(channelService, discoveryService)
	dmHandler := handlers.NewDMHandler(dmService)

	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Channels
	mux.Handle("POST /api/v1/channels", auth(http.HandlerFunc(channelHandler.Create)))
	mux.Handle("GET /api/v1/channels", auth(http.HandlerFunc(channelHandler.Mine)))
	mux.Handle("GET /api/v1/channels/joinable", auth(http.HandlerFunc(channelHandler.Joinable)))
	mux.Handle("GET /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Get)))
	mux.Handle("PATCH /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Update)))
	mux.Handle("DELETE /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Delete)))
	mux.Handle("GET /api/v1/channels/{id}/members", auth(http.HandlerFunc(channelHandler.Roster)))

	// Membership
	mux.Handle("POST /api/v1/channels/{id}/join", auth(http.HandlerFunc(channelHandler.Join)))
	mux.Handle("POST /api/v1/channels/{id}/leave", auth(http.HandlerFunc(channelHandler.Leave)))

	// Invites
	mux.Handle("POST /api/v1/channels/{id}/invites", auth(http.HandlerFunc(channelHandler.CreateInvite)))
	mux.Handle("POST /api/v1/invites/{token}/join", auth(http.HandlerFunc(channelHandler.JoinWithInvite)))

	// Moderation
	mux.Handle("POST /api/v1/channels/{id}/ban", auth(http.HandlerFunc(channelHandler.Ban)))
	mux.Handle("POST /api/v1/channels/{id}/unban", auth(http.HandlerFunc(channelHandler.Unban)))
	mux.Handle("POST /api/v1/channels/{id}/mute", auth(http.HandlerFunc(channelHandler.Mute)))
	mux.Handle("POST /api/v1/channels/{id}/unmute", auth(http.HandlerFunc(channelHandler.Unmute)))
	mux.Handle("POST /api/v1/channels/{id}/promote", auth(http.HandlerFunc(channelHandler.Promote)))

	// Direct messages
	mux.Handle("POST /api/v1/dm/{uid}", auth(http.HandlerFunc(dmHandler.Open)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
