package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the msgbridge service",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := makeHTTPRequest("GET", "/healthz", nil)
		if err != nil {
			return fmt.Errorf("HTTP health check failed: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if outputJSON {
			printResponse(body)
			return nil
		}

		var st struct {
			OK         bool   `json:"ok"`
			Message    string `json:"message"`
			Watcher    bool   `json:"watcher"`
			QueueDepth int    `json:"queue_depth"`
		}
		if err := json.Unmarshal(body, &st); err != nil {
			return fmt.Errorf("unexpected health response: %s", string(body))
		}

		if st.OK {
			fmt.Println("✓ Service is healthy")
		} else {
			fmt.Printf("✗ Service is unhealthy: %s\n", st.Message)
		}
		fmt.Printf("  watcher stream: %v\n", st.Watcher)
		fmt.Printf("  queue depth:    %d\n", st.QueueDepth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
