package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"concierge/config"
	"concierge/cron"
	"concierge/database"
	knowledgeRepo "concierge/database/repository/knowledge"
	ticketRepo "concierge/database/repository/ticket"
	"concierge/handlers"
	"concierge/middleware"
	"concierge/routes"
	"concierge/services/assistant"
	"concierge/services/booking"
	ai "concierge/services/intelligence"
	"concierge/services/knowledge"
	"concierge/services/session"
	"concierge/services/smalltalk"
	"concierge/services/speech"
	"concierge/services/ticket"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClients := map[string]*redis.Client{"cache": utils.GetCacheClient()}

	// Booking dialog sessions.
	var sessionRedis *redis.Client
	if cfg.SessionStore == session.BackendRedis {
		sessionRedis = utils.GetSessionClient()
		redisClients["session"] = sessionRedis
	}
	store, err := session.NewStore(session.Options{
		Backend: cfg.SessionStore,
		TTL:     cfg.SessionTTL,
		Redis:   sessionRedis,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("main: failed to create session store", zap.Error(err))
	}
	if mem, ok := store.(*session.MemoryStore); ok && cfg.SessionTTL > 0 {
		mem.StartCleanupRoutine(ctx, cfg.SessionTTL/2, logger)
	}

	// Gemini embeddings and generation.
	if cfg.GeminiAPIKey == "" {
		logger.Fatal("main: GEMINI_API_KEY is required")
	}
	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("main: failed to create gemini client", zap.Error(err))
	}
	defer gemini.Close()

	embedder := ai.NewCachedEmbedder(
		gemini.Embedder(cfg.EmbeddingModel, ai.DefaultRetry),
		utils.GetCacheClient(),
		cfg.EmbeddingModel,
		utils.EmbeddingCacheTTL,
		logger,
	)
	generator := gemini.Generator(cfg.LLMModel, 0.1, 500)

	// Knowledge and tickets.
	var (
		source      ai.KnowledgeSource
		tickets     ticket.Repository
		mongoClient *mongo.Client
	)
	switch cfg.KnowledgeStore {
	case "memory":
		mem := knowledge.NewMemoryRepo()
		seeder := &knowledge.Ingester{Embedder: embedder, Repo: mem, Logger: logger}
		if err := seeder.Seed(ctx, cfg.SeedIntentsFile, cfg.SeedFactsFile); err != nil {
			logger.Fatal("main: failed to seed knowledge", zap.Error(err))
		}
		source = mem
		tickets = ticket.NewMemoryRepo()
	default:
		db := database.Database()
		mongoClient = database.MongoClient
		source = knowledgeRepo.NewMongoKnowledgeRepo(db)
		tickets = ticketRepo.NewMongoTicketRepo(db)
	}

	intentIndex, factIndex, err := ai.LoadIndexes(ctx, source)
	if err != nil {
		logger.Fatal("main: failed to load knowledge", zap.Error(err))
	}
	logger.Info("Knowledge loaded", zap.Int("intentExamples", intentIndex.Len()), zap.Int("hotelFacts", factIndex.Len()))
	if intentIndex.Len() == 0 {
		logger.Warn("No intent examples loaded, every message will be classified as unknown")
	}

	// Front desk notifications.
	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()
	worker := cron.InitTicketWorker(tickets, logger)

	// Voice input is optional.
	var stt handlers.Transcriber
	recognizer, err := speech.NewGoogleRecognizer(ctx, cfg.GoogleServiceAccountFile)
	if err != nil {
		logger.Warn("Voice input disabled", zap.Error(err))
	} else {
		defer recognizer.Close()
		stt = speech.NewTranscriber(recognizer, speech.FFmpegConvert, cfg.SpeechLanguage, logger)
	}

	dialog := booking.NewDialog(store,
		booking.WithStrictDates(cfg.BookingStrictDates),
		booking.WithLogger(logger),
	)
	router := &assistant.Router{
		Classifier: ai.NewClassifier(embedder, intentIndex, cfg.IntentTopK, logger),
		Dialog:     dialog,
		SmallTalk:  smalltalk.NewResponder(),
		Desk:       booking.NewDesk(),
		FAQ:        ai.NewFAQAnswerer(embedder, factIndex, generator, cfg.FAQTopK, logger),
		Tickets:    ticket.NewService(tickets, queue, logger),
		Logger:     logger,
	}

	utils.StartHealthMonitor(ctx, redisClients, mongoClient)

	// Create the Gin engine.
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.ErrorHandler())
	engine.Use(middleware.RequestLogger(logger))

	chat := handlers.NewChatHandler(router, dialog, stt, config.Origins(), logger)
	routes.RegisterRoutes(engine, chat, config.Origins(), cfg.MaxRequestsPerMin, logger)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: engine,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
