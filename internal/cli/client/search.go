package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the similarity search API request.
type SearchRequest struct {
	Query    string   `json:"query"`
	K        *int     `json:"k,omitempty"`
	MinScore *float32 `json:"min_score,omitempty"`
}

// SearchResult represents a single search result.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata ResultMetadata `json:"metadata"`
	Text     string         `json:"text"`
}

// ResultMetadata carries the chunk attributes returned with a result.
type ResultMetadata struct {
	SourceDocID    string         `json:"source_doc_id"`
	SectionHeading string         `json:"section_heading"`
	Journal        string         `json:"journal"`
	PublishYear    int            `json:"publish_year"`
	DOI            string         `json:"doi"`
	Link           string         `json:"link"`
	Attributes     map[string]any `json:"attributes"`
}

// SearchResponse represents the similarity search API response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		k        int
		minScore float32
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search journal chunks",
		Long:  "Searches indexed journal chunks using semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := SearchRequest{Query: args[0]}
			if cmd.Flags().Changed("k") {
				req.K = &k
			}
			if cmd.Flags().Changed("min-score") {
				req.MinScore = &minScore
			}
			return runSearch(cmd, req, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "n", 10, "Maximum number of results")
	cmd.Flags().Float32Var(&minScore, "min-score", 0.25, "Minimum similarity score")

	return cmd
}

func runSearch(cmd *cobra.Command, req SearchRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/similarity_search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (%.2f)\n", i+1, result.Metadata.SourceDocID, result.Score)
		if result.Metadata.SectionHeading != "" {
			fmt.Printf("   Section: %s\n", result.Metadata.SectionHeading)
		}
		text := result.Text
		if len(text) > 100 {
			text = text[:97] + "..."
		}
		fmt.Printf("   %s\n", text)
		fmt.Printf("   ID: %s\n", result.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
