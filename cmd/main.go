package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	discordclient "warnbot/clients/discord"
	"warnbot/config"
	"warnbot/db"
	"warnbot/handlers"
	"warnbot/services/links"
	"warnbot/services/mediatracker"
	"warnbot/services/txmanager"
	"warnbot/services/warns"
	"warnbot/usecases/moderation"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	warnsRepo := db.NewPostgresWarnsRepository(dbConn, cfg.DatabaseSchema)
	linksRepo := db.NewPostgresLinksRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	warnsService := warns.NewWarnsService(warnsRepo)
	linksService := links.NewLinksService(
		linksRepo,
		txManager,
		links.GenerateLinkCode,
		links.DefaultReuseWindow,
		links.DefaultConfirmTTL,
	)
	mediaTracker := mediatracker.NewMediaTracker()

	// One gateway session serves both the event handlers and the REST client.
	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	discordClient := discordclient.NewDiscordClient(session)

	moderationUC := moderation.NewModerationUseCase(
		warnsService,
		linksService,
		mediaTracker,
		discordClient,
		cfg.DiscordConfig.AuditChannelID,
	)
	eventsHandler := handlers.NewDiscordEventsHandler(
		session,
		moderationUC,
		cfg.DiscordConfig.RequestChannelID,
	)

	if err := eventsHandler.StartBot(); err != nil {
		return err
	}
	defer eventsHandler.StopBot()

	linkAPIHandler := handlers.NewLinkAPIHandler(linksService, cfg.LinkAPIConfig.Secret)

	router := mux.NewRouter()
	linkAPIHandler.SetupEndpoints(router)

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Printf("✅ Shutdown complete")
	return nil
}
