package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for the server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Map environment variables to Viper keys for external services
	viper.BindEnv("weaviate.url", "WEAVIATE_URL")
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.timeout", "OLLAMA_TIMEOUT")
	viper.BindEnv("unstructured.url", "UNSTRUCTURED_API_URL")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.archive_bucket", "MINIO_ARCHIVE_BUCKET")

	// Map environment variables to Viper keys for the rag pipeline
	viper.BindEnv("rag.data_folder", "RAG_DATA_FOLDER")
	viper.BindEnv("rag.chunk_size", "RAG_CHUNK_SIZE")
	viper.BindEnv("rag.chunk_overlap", "RAG_CHUNK_OVERLAP")
	viper.BindEnv("rag.top_k", "RAG_TOP_K")
	viper.BindEnv("rag.embedding_model", "RAG_EMBEDDING_MODEL")
	viper.BindEnv("rag.chat_model", "RAG_CHAT_MODEL")
	viper.BindEnv("chat.session_ttl", "CHAT_SESSION_TTL")
	viper.BindEnv("chat.max_sessions", "CHAT_MAX_SESSIONS")

	// Set default values for the server
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")

	// Set default values for external services
	viper.SetDefault("weaviate.url", "weaviate:8080")
	viper.SetDefault("ollama.url", "http://ollama:11434/api")
	viper.SetDefault("ollama.timeout", "120s")
	viper.SetDefault("unstructured.url", "http://unstructured_api:8000")
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.archive_bucket", "documents")

	// Set default values for the rag pipeline
	viper.SetDefault("rag.data_folder", "./data")
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 200)
	viper.SetDefault("rag.top_k", 2)
	viper.SetDefault("rag.embedding_model", "nomic-embed-text")
	viper.SetDefault("rag.chat_model", "llama3")
	viper.SetDefault("chat.session_ttl", "30m")
	viper.SetDefault("chat.max_sessions", 1024)
}
