package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	sendTo      string
	sendMessage string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Queue an outbound message",
	Long: `Submit a message to the msgbridge outbound queue. The service
acknowledges queuing immediately; delivery happens asynchronously in
arrival order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendTo == "" || sendMessage == "" {
			return fmt.Errorf("--to and --message are required")
		}

		resp, err := makeHTTPRequest("POST", "/v1/send", map[string]string{
			"to":      sendTo,
			"message": sendMessage,
		})
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != 202 {
			return fmt.Errorf("send rejected (%s): %s", resp.Status, string(body))
		}

		printResponse(body)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient identifier (phone number or handle)")
	sendCmd.Flags().StringVar(&sendMessage, "message", "", "message body")
	rootCmd.AddCommand(sendCmd)
}
