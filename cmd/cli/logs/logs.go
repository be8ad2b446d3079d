package logs

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

// InitLogs registers the logs command on the root command.
func InitLogs(rootCmd *cobra.Command) {
	rootCmd.AddCommand(logsCmd())
}

func logsCmd() *cobra.Command {
	var actor, resource, eventType, severity, from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Query audit log entries",
		Long:  "List audit log entries, most recent first, with optional filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			q := url.Values{}
			if actor != "" {
				q.Set("actor", actor)
			}
			if resource != "" {
				q.Set("resource", resource)
			}
			if eventType != "" {
				q.Set("event_type", eventType)
			}
			if severity != "" {
				q.Set("severity", severity)
			}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}
			q.Set("limit", fmt.Sprintf("%d", limit))

			req, err := http.NewRequest("GET", config.APIURL()+"/v1/logs?"+q.Encode(), nil)
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
				Items []models.AuditLogEntry `json:"items"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			rows := make([][]any, 0, len(out.Items))
			for _, e := range out.Items {
				rows = append(rows, []interface{}{
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.EventType, e.Severity, e.Actor,
					e.Resource + "/" + e.ResourceID,
					shortHash(e.Hash),
				})
			}
			output.RenderTable(
				[]string{"Created", "Event", "Severity", "Actor", "Resource", "Hash"},
				rows,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "filter by actor")
	cmd.Flags().StringVar(&resource, "resource", "", "filter by resource type")
	cmd.Flags().StringVar(&eventType, "event-type", "", "filter by event type")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity")
	cmd.Flags().StringVar(&from, "from", "", "start of range (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "end of range (RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to return")

	return cmd
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
