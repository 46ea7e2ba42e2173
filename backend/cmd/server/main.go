package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"friendgraph/backend/internal/graph"
	"friendgraph/backend/internal/render"
	"friendgraph/backend/internal/store"
	"friendgraph/backend/pkg/config"
	"friendgraph/backend/pkg/logger"
)

// Read-only preview server: serves the current graph for a guild as a PNG or
// as the interactive HTML document, with raw IDs for labels. Rendering never
// mutates the stored graph, so no locking beyond the service's own is needed.
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
	log.Info("Starting graph preview server...")

	ctx := context.Background()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to create MongoDB client", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal("Failed to verify MongoDB connectivity", zap.Error(err))
	}

	graphStore := store.NewMongo(client, cfg.MongoDatabase, cfg.StoreTimeout)
	graphSvc := graph.NewService(graphStore)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	guilds := router.Group("/guilds")
	{
		// Static image preview
		guilds.GET("/:guild/graph.png", func(c *gin.Context) {
			snap, ok := snapshotFor(c, graphStore, graphSvc, log)
			if !ok {
				return
			}

			png, err := render.StaticPNG(c.Request.Context(), snap, render.IDLabels)
			if err != nil {
				log.Error("Failed to render static graph", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render graph"})
				return
			}
			c.Data(http.StatusOK, "image/png", png)
		})

		// Interactive document preview
		guilds.GET("/:guild/graph.html", func(c *gin.Context) {
			snap, ok := snapshotFor(c, graphStore, graphSvc, log)
			if !ok {
				return
			}

			html, err := render.InteractiveHTML(snap, render.IDLabels)
			if err != nil {
				log.Error("Failed to render interactive graph", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render graph"})
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// snapshotFor resolves the guild's tracked scope and takes a graph snapshot,
// writing the HTTP error response itself on failure.
func snapshotFor(c *gin.Context, channels *store.Mongo, svc *graph.Service, log *zap.Logger) (*graph.Snapshot, bool) {
	guildID := c.Param("guild")
	ctx := c.Request.Context()

	channelID, err := channels.TrackedChannel(ctx, guildID)
	if err != nil {
		log.Error("Failed to load tracking channel", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
		return nil, false
	}
	if channelID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No tracking channel configured for this guild"})
		return nil, false
	}

	snap, err := svc.Snapshot(ctx, graph.Scope{GuildID: guildID, ChannelID: channelID})
	if err != nil {
		log.Error("Failed to snapshot graph", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
		return nil, false
	}
	return snap, true
}

func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
