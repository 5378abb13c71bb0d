package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/docquery/docquery"
	"github.com/docquery/docquery/helper"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/server"
	"github.com/docquery/docquery/store"
)

// Environment:
//
//	ANTHROPIC_API_KEY  required (or OPENAI_API_KEY with LLM_PROVIDER=openai)
//	SERVER_ADDR        listen address, default :8080
//	DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD
//	                   optional; when set, chunks are persisted in
//	                   Postgres/pgvector instead of memory
func main() {
	_ = godotenv.Load()

	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	client, err := newClient()
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	dqOpts := []docquery.Option{docquery.WithLogger(logger)}

	// Opt into the persistent chunk store when a database is configured
	if os.Getenv("DB_HOST") != "" {
		dbConfig, err := helper.NewDatabaseConfiguration()
		if err != nil {
			log.Fatalf("Invalid database configuration: %v", err)
		}
		db := helper.NewDatabase("docquery", dbConfig, logger)
		defer db.Instance.Close()

		postgresStore, err := store.NewPostgresStore(db, 384)
		if err != nil {
			log.Fatalf("Failed to create postgres store: %v", err)
		}
		dqOpts = append(dqOpts, docquery.WithStore(postgresStore))
	}

	dq, err := docquery.New(client, dqOpts...)
	if err != nil {
		log.Fatalf("Failed to create docquery: %v", err)
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	if err := server.New(dq, logger).Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newClient() (llm.Client, error) {
	if os.Getenv("LLM_PROVIDER") == "openai" {
		return llm.NewOpenAIClient("gpt-4o")
	}
	return llm.NewAnthropicClient(anthropic.ModelClaudeSonnet4_5)
}
