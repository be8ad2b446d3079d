package export

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/staybook/audit-service/cmd/cli/config"
)

// InitExport registers the export command on the root command.
func InitExport(rootCmd *cobra.Command) {
	rootCmd.AddCommand(exportCmd())
}

func exportCmd() *cobra.Command {
	var reportType string
	var outFile string

	cmd := &cobra.Command{
		Use:   "export [subject-id]",
		Short: "Generate a compliance export for a subject",
		Long:  "Assemble a GDPR/CCPA export of all audit entries and domain records held about a subject.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			subjectID := args[0]
			url := fmt.Sprintf("%s/v1/compliance/%s?type=%s", config.APIURL(), subjectID, reportType)
			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			// Re-indent for the file/stdout so the export is readable as-is.
			var report any
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				return err
			}
			pretty, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			if outFile == "" {
				fmt.Println(string(pretty))
				return nil
			}
			if err := os.WriteFile(outFile, pretty, 0600); err != nil {
				return err
			}
			fmt.Printf("Export written to %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "GDPR", "report type (GDPR or CCPA)")
	cmd.Flags().StringVar(&outFile, "out", "", "write the export to a file instead of stdout")

	return cmd
}
