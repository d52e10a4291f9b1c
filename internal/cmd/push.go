package cmd

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/auranova/uebridge/internal/notifier"
)

var (
	pushCommand string
	pushData    string
	pushHost    string
	pushPort    int
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send one message to the engine editor",
	Long: `Send one JSON message to the engine's notification port. The message is
the --data object with "command" set from --command.`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVarP(&pushCommand, "command", "c", "", "Command name placed in the message")
	pushCmd.Flags().StringVar(&pushData, "data", "{}", "Additional message fields as a JSON object")
	pushCmd.Flags().StringVar(&pushHost, "host", "", "Engine host (default: ENGINE_HOST)")
	pushCmd.Flags().IntVar(&pushPort, "port", 0, "Engine port (default: ENGINE_PORT)")
	_ = pushCmd.MarkFlagRequired("command")
}

func runPush(cmd *cobra.Command, _ []string) error {
	message, err := buildPushMessage(pushCommand, pushData)
	if err != nil {
		return err
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	host := cfg.Engine.Host
	if pushHost != "" {
		host = pushHost
	}
	port := cfg.Engine.Port
	if pushPort > 0 {
		port = pushPort
	}

	n := notifier.New(notifier.Config{Addr: net.JoinHostPort(host, strconv.Itoa(port)), Timeout: cfg.Engine.DialTimeout}, log.Named("notifier"))
	n.Send(cmd.Context(), message)
	return nil
}

func buildPushMessage(command, data string) (map[string]any, error) {
	message := map[string]any{}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &message); err != nil {
			return nil, fmt.Errorf("--data must be a JSON object: %w", err)
		}
		if message == nil {
			message = map[string]any{}
		}
	}
	message["command"] = command
	return message, nil
}
