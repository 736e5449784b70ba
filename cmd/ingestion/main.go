// cmd/ingestion/main.go
package main

import (
	"log"

	"ingestion-service/internal/api/handlers"
	"ingestion-service/internal/api/responses"
	"ingestion-service/internal/config"
	"ingestion-service/internal/core/ingestion"

	"github.com/gin-gonic/gin"
)

func main() {
	responses.InitLogger()
	cfg := config.Load()

	ingestionService := ingestion.NewService(ingestion.Config{
		SyncThresholdBytes: cfg.SyncThresholdBytes,
		Timeout:            cfg.IngestTimeout,
		ChunkRows:          cfg.ChunkRows,
		DisableFallback:    cfg.DisableFallback,
	}, responses.Logger())
	ingestionHandler := handlers.NewIngestionHandler(ingestionService)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		// Sem Middleware -- Gateway lida com isso
		apiV1.POST("/ingest", ingestionHandler.HandleIngest)
		apiV1.POST("/reindex", ingestionHandler.HandleReindex)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "ingestion-service"})
	})

	log.Printf("🚀 Ingestion Service (Go) iniciado e escutando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de ingestão: ", err)
	}
}
