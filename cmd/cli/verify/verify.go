package verify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/staybook/audit-service/cmd/cli/config"
	"github.com/staybook/audit-service/cmd/cli/output"
	"github.com/staybook/audit-service/internal/models"
)

// InitVerify registers the verify command on the root command.
func InitVerify(rootCmd *cobra.Command) {
	rootCmd.AddCommand(verifyCmd())
}

func verifyCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify audit chain integrity",
		Long: `Walk the audit chain over a date range, recompute every hash, and report
entries whose content was altered (hash mismatch) or whose position in the
sequence no longer holds (chain broken). With no range, the whole log is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			q := url.Values{}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}

			req, err := http.NewRequest("POST", config.APIURL()+"/v1/verify?"+q.Encode(), nil)
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
				return fmt.Errorf("status %d", resp.StatusCode)
			}

			var report models.VerificationReport
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				return err
			}

			fmt.Printf("Checked %d entries: %d valid, %d invalid, %d chain breaks\n",
				report.TotalChecked, report.Valid, len(report.Invalid), len(report.Broken))

			if report.Intact() {
				fmt.Println("Chain intact.")
				return nil
			}

			rows := make([][]any, 0, len(report.Invalid)+len(report.Broken))
			for _, f := range append(report.Invalid, report.Broken...) {
				rows = append(rows, []interface{}{
					f.CreatedAt.Format("2006-01-02 15:04:05"), f.EntryID, f.Reason,
				})
			}
			output.RenderTable([]string{"Created", "Entry", "Finding"}, rows)
			return fmt.Errorf("tampering detected")
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start of range (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "end of range (RFC3339)")

	return cmd
}
