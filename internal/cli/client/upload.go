package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UploadResponse represents the upload API response.
type UploadResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Stored  int    `json:"stored"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var schemaVersion string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload journal chunks",
		Long:  "Uploads a JSON file of journal chunks for embedding and indexing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], schemaVersion, outputJSON)
		},
	}

	cmd.Flags().StringVar(&schemaVersion, "schema-version", "1.0", "Schema version of the chunk file")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, schemaVersion string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.PutMultipart("/api/upload", filePath, map[string]string{
		"schema_version": schemaVersion,
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(uploadResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println(uploadResp.Message)
	}

	return nil
}
