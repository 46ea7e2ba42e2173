package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bwmarrin/discordgo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"friendgraph/backend/internal/discord"
	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/publish"
	"friendgraph/backend/internal/store"
	"friendgraph/backend/pkg/config"
	"friendgraph/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Discord bot...")

	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

	ctx := context.Background()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to create MongoDB client", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	// Verify MongoDB connection
	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal("Failed to verify MongoDB connectivity", zap.Error(err))
	}

	// Initialize dependencies
	graphStore := store.NewMongo(client, cfg.MongoDatabase, cfg.StoreTimeout)
	graphSvc := graph.NewService(graphStore)

	// Object storage publisher (optional: without a bucket, -link degrades)
	var publisher publish.Publisher
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			log.Fatal("Failed to load AWS configuration", zap.Error(err))
		}
		publisher = publish.NewS3(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.PublishTimeout)
		log.Info("S3 publisher initialized", zap.String("bucket", cfg.S3Bucket))
	} else {
		log.Warn("S3_BUCKET not set, interactive graph hosting disabled")
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	// Create command handler
	handler := discord.NewHandler(graphSvc, graphStore, publisher, cfg.CommandPrefix, log)

	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handler.HandleMessage(s, m)
	})

	// Required intents:
	// - IntentsGuilds: Access to guild information
	// - IntentsGuildMessages: Read messages in guild channels
	// - IntentMessageContent: Read command text and mentions
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	// Open connection
	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	log.Info("Discord bot is running. Press CTRL-C to exit.")

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, runCtx := errgroup.WithContext(runCtx)

	// Expire abandoned cleargraph confirmations in the background
	g.Go(func() error {
		return handler.Run(runCtx)
	})

	// Wait for interrupt signal
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		select {
		case <-quit:
			stop()
		case <-runCtx.Done():
		}
		return nil
	})

	_ = g.Wait()

	log.Info("Shutting down Discord bot...")
}
