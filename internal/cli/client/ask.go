package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// QuestionRequest represents the question answering API request.
type QuestionRequest struct {
	Question string   `json:"question"`
	K        *int     `json:"k,omitempty"`
	MinScore *float32 `json:"min_score,omitempty"`
}

// Citation points back at a chunk the answer drew from.
type Citation struct {
	SourceDocID    string `json:"source_doc_id"`
	SectionHeading string `json:"section_heading"`
	Link           string `json:"link"`
}

// QuestionResponse represents the question answering API response.
type QuestionResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		k        int
		minScore float32
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Answers a question from the indexed journal chunks, with citations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := QuestionRequest{Question: args[0]}
			if cmd.Flags().Changed("k") {
				req.K = &k
			}
			if cmd.Flags().Changed("min-score") {
				req.MinScore = &minScore
			}
			return runAsk(cmd, req, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "n", 10, "Number of chunks to retrieve")
	cmd.Flags().Float32Var(&minScore, "min-score", 0.25, "Minimum similarity score")

	return cmd
}

func runAsk(cmd *cobra.Command, req QuestionRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/api/question_answer", req)
	if err != nil {
		return fmt.Errorf("question failed: %w", err)
	}

	var qaResp QuestionResponse
	if err := json.Unmarshal(resp.Data, &qaResp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(qaResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(qaResp.Answer)
	if len(qaResp.Citations) > 0 {
		fmt.Println("\nCitations:")
		for i, citation := range qaResp.Citations {
			fmt.Printf("%d. %s", i+1, citation.SourceDocID)
			if citation.SectionHeading != "" {
				fmt.Printf(" (%s)", citation.SectionHeading)
			}
			if citation.Link != "" {
				fmt.Printf(" %s", citation.Link)
			}
			fmt.Println()
		}
	}

	return nil
}
