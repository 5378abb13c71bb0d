package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/docquery/docquery"
	"github.com/docquery/docquery/llm"
	"github.com/docquery/docquery/model"
)

const sampleContent = `COMPLAINT LOG 2024:
QE-100 Germany packaging damaged Unsubstantiated
QE-123 Israel valve leaking Substantiated
QE-200 France labeling smudged Unsubstantiated
QE-201 Israel pump noise Unsubstantiated

CAPA STATUS:
The CAPA for the valve issue QE-123 is ongoing. Additional torque checks
were introduced on the filling line. No CAPA is required for QE-100.`

func main() {
	// Load ANTHROPIC_API_KEY from .env if present
	_ = godotenv.Load()

	client, err := llm.NewAnthropicClient(anthropic.ModelClaudeSonnet4_5)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	dq, err := docquery.New(client)
	if err != nil {
		log.Fatalf("Failed to create docquery: %v", err)
	}

	ctx := context.Background()

	// Load the sample document
	fmt.Println("Loading document...")
	err = dq.LoadContent(ctx, &model.Document{
		Title:   "Complaint Log 2024",
		Source:  "basic_example",
		Content: sampleContent,
	})
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}

	status := dq.Status()
	fmt.Printf("Loaded %q: %d chunks, %d bytes\n", status.DocumentTitle, status.ChunkCount, status.DocumentSize)

	// A counting question takes the exhaustive block-scan path
	question := "How many complaints are from Israel?"
	fmt.Printf("\nQuestion: %s\n", question)

	result, err := dq.Ask(ctx, question)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", result.Answer)
	fmt.Printf("Type: %s (confidence %.2f)\n", result.Classification.PrimaryType, result.Classification.Confidence)
	fmt.Printf("Chunks analyzed: %d\n", result.ChunksAnalyzed)
	if result.QualityMetrics != nil {
		overall := result.QualityMetrics.OverallAssessment
		fmt.Printf("Quality: %d%% (%s)\n", overall.AverageScore, overall.Summary)
	}

	// A complex question is decomposed into parallel sub-queries;
	// AskStream surfaces the per-step progress.
	question = "Analyze the total complaints compared to previous period, the main reasons for complaints, and the CAPA status in the Israel market."
	fmt.Printf("\nQuestion: %s\n", question)

	stream, err := dq.AskStream(ctx, question)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	for event := range stream.Events() {
		switch {
		case event.Type == model.EventTypeResult:
			fmt.Printf("\nAnswer: %s\n", event.Data.Answer)
			fmt.Printf("Approach: %s with %d sub-queries\n", event.Data.Approach, event.Data.SubQueryCount)
		case event.Type == model.EventTypeError:
			fmt.Fprintf(os.Stderr, "Query failed: %s\n", event.Error)
		default:
			fmt.Printf("  [%s] %s: %s\n", event.Status, event.Step, event.Detail)
		}
	}
}
