package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	httpHdlr "docchat/handler/http"
	"docchat/src/core/chat"
	"docchat/src/core/document"
	"docchat/src/fsutil"
	"docchat/src/infrastructure/integrations/ollama"
	"docchat/src/infrastructure/integrations/unstructured"
	"docchat/src/log"
	"docchat/src/storage/minioctrl"
	weaviatestore "docchat/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document chat server",
	Long:  `The serve command starts an HTTP server providing document ingestion and retrieval-augmented chat.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	docService, chatService, err := buildServices(context.Background())
	if err != nil {
		log.Error(err, "Failed to initialize services")
		return
	}

	handler := httpHdlr.NewHandler(docService, chatService)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}

// buildServices wires the external collaborators into the two facilities
func buildServices(ctx context.Context) (*document.Service, *chat.Service, error) {
	// Initialize Ollama client
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: viper.GetDuration("ollama.timeout"),
	})

	// Initialize Weaviate client and the chunk index
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	index := weaviatestore.NewChunkIndex(weaviatestore.NewSDK(wc))
	if err := index.EnsureSchema(ctx); err != nil {
		return nil, nil, err
	}

	// Initialize the document archive
	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		false,
	)
	if err != nil {
		return nil, nil, err
	}
	archive, err := minioctrl.NewDocumentArchive(ctx, minioService, viper.GetString("minio.archive_bucket"))
	if err != nil {
		return nil, nil, err
	}

	// Initialize the word-document extractor
	extractor := unstructured.NewUnstructuredService(viper.GetString("unstructured.url"), nil)

	docService := document.NewService(
		fsutil.NewLocalFileStore(),
		oc,
		index,
		archive,
		extractor,
		document.Config{
			DataFolder:     viper.GetString("rag.data_folder"),
			ChunkSize:      viper.GetInt("rag.chunk_size"),
			ChunkOverlap:   viper.GetInt("rag.chunk_overlap"),
			EmbeddingModel: viper.GetString("rag.embedding_model"),
		},
	)

	store := chat.NewInMemorySessionStore(
		viper.GetDuration("chat.session_ttl"),
		viper.GetInt("chat.max_sessions"),
	)
	chatService := chat.NewService(store, oc, index, chat.Config{
		EmbeddingModel: viper.GetString("rag.embedding_model"),
		ChatModel:      viper.GetString("rag.chat_model"),
		TopK:           viper.GetInt("rag.top_k"),
	})

	return docService, chatService, nil
}
