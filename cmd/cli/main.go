package main

import (
	"fmt"
	"os"

	"github.com/staybook/audit-service/cmd/cli/alerts"
	"github.com/staybook/audit-service/cmd/cli/auth"
	"github.com/staybook/audit-service/cmd/cli/export"
	"github.com/staybook/audit-service/cmd/cli/logs"
	"github.com/staybook/audit-service/cmd/cli/root"
	"github.com/staybook/audit-service/cmd/cli/verify"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	logs.InitLogs(rootCmd)
	verify.InitVerify(rootCmd)
	export.InitExport(rootCmd)
	alerts.InitAlerts(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
