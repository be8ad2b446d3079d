package alerts

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/staybook/audit-service/cmd/cli/config"
	"github.com/staybook/audit-service/cmd/cli/output"
	"github.com/staybook/audit-service/internal/models"
)

// InitAlerts registers the alerts command on the root command.
func InitAlerts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(alertsCmd())
}

func alertsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List operator alerts",
		Long:  "List notifications raised for CRITICAL audit events and integrity violations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/alerts?limit=%d", config.APIURL(), limit)
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
				return fmt.Errorf("status %d", resp.StatusCode)
			}

			var out struct {
				Items []models.Notification `json:"items"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			rows := make([][]any, 0, len(out.Items))
			for _, n := range out.Items {
				rows = append(rows, []interface{}{
					n.CreatedAt.Format("2006-01-02 15:04:05"),
					n.Type, n.Priority, n.Title, n.AuditEntryID,
				})
			}
			output.RenderTable([]string{"Created", "Type", "Priority", "Title", "Entry"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to return")

	return cmd
}
