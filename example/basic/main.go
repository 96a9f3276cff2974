package main

import (
	"context"
	"fmt"
	"log"

	compliance "github.com/isaacchin12/c8-techJam"
	"github.com/isaacchin12/c8-techJam/core/prompt"
	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/isaacchin12/c8-techJam/model"
)

var samplePassages = []*model.Chunk{
	{
		Content: `Florida's Online Protections for Minors requires social media platforms to obtain parental consent before allowing minors under 16 to hold accounts, and to terminate accounts of minors under 14.`,
		Source:  "florida_minors",
		Metadata: model.Metadata{
			model.MetaTitle:        "Florida Online Protections for Minors",
			model.MetaJurisdiction: "US-FL",
		},
	},
	{
		Content: `The EU Digital Services Act obliges very large online platforms to assess and mitigate systemic risks, including risks to minors, and to provide transparency about recommender systems.`,
		Source:  "eu_dsa",
		Metadata: model.Metadata{
			model.MetaTitle:        "EU Digital Services Act",
			model.MetaJurisdiction: "EU",
		},
	},
	{
		Content: `The California Consumer Privacy Act grants California residents the right to know what personal information is collected about them and to request its deletion.`,
		Source:  "ccpa",
		Metadata: model.Metadata{
			model.MetaTitle:        "California Consumer Privacy Act",
			model.MetaJurisdiction: "US-CA",
		},
	},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	checker, err := compliance.NewChecker(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create checker: %v", err)
	}
	defer checker.Close()

	// Set up the default pipeline (embeddings + cross-encoder reranking)
	if err := checker.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Abbreviations the generation backend should understand
	checker.SetGlossary(prompt.Glossary{
		"DSA":  "Digital Services Act",
		"CCPA": "California Consumer Privacy Act",
		"ASL":  "age, sex, location",
	})

	fmt.Println("Ingesting passages...")
	count, err := checker.IngestChunks(samplePassages)
	if err != nil {
		log.Fatalf("Failed to ingest passages: %v", err)
	}
	fmt.Printf("Ingested %d passages\n", count)

	query := "Our new feature collects ASL from users at signup and lets minors create accounts without parental approval."
	fmt.Printf("\nQuerying: %s\n", query)

	// Retrieval only, to show the fused ranking
	candidates, err := checker.Search(context.Background(), query, nil)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nTop %d candidates:\n", len(candidates))
	for i, candidate := range candidates {
		fmt.Printf("\n--- Candidate %d ---\n", i+1)
		fmt.Printf("Fused score: %.4f (vector %.4f, keyword %.4f, feedback %.2f)\n",
			candidate.FusedScore, candidate.VectorScore, candidate.KeywordScore, candidate.FeedbackScore)
		fmt.Printf("Content: %s\n", candidate.Chunk.Content)
	}

	// Full question flow, requires a running Ollama backend on localhost:11434
	answer, err := checker.AskStreaming(context.Background(), query, nil, func(fragment string) {
		fmt.Print(fragment)
	})
	if err != nil {
		log.Printf("Generation skipped: %v", err)
		fmt.Println("\nRetrieval example completed successfully!")
		return
	}

	fmt.Printf("\n\nImplications: %s\n", answer.Structured.Implications)
	for _, finding := range answer.Structured.Results {
		fmt.Printf("- %s (confidence %.0f): %s\n", finding.Law, float64(finding.Confidence), finding.Reasoning)
	}

	// Rate the answer so future retrieval favors the cited passages
	err = checker.RecordFeedback(&model.FeedbackRecord{
		Query:      query,
		AnswerText: answer.Context,
		Rating:     1,
		Comments:   "Correctly flagged the parental consent requirement",
	})
	if err != nil {
		log.Printf("Failed to record feedback: %v", err)
	}

	fmt.Println("\nBasic example completed successfully!")
}
