package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/notify"
)

var errNoMessage = errors.New("notify: --message is required")

type notifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newNotifyCmd(a *app) *cobra.Command {
	var (
		webhookURL string
		message    string
		kind       string
	)
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a message to the Discord webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if message == "" {
				return errNoMessage
			}
			if webhookURL == "" {
				webhookURL = os.Getenv(a.cfg.Notify.WebhookEnv)
			}

			err := sendNotification(cmd, a, webhookURL, kind, message)
			if werr := writeNotifyResult(cmd.OutOrStdout(), err); werr != nil {
				return errors.Join(err, werr)
			}

			return err
		},
	}

	cmd.Flags().StringVar(&webhookURL, "webhook-url", "", "webhook url (default from the configured environment variable)")
	cmd.Flags().StringVar(&message, "message", "", "message to send")
	cmd.Flags().StringVar(&kind, "type", string(notify.KindInfo), "success, warning, error, info or plain")

	return cmd
}

func sendNotification(cmd *cobra.Command, a *app, webhookURL, kind, message string) error {
	k, err := notify.ParseKind(kind)
	if err != nil {
		return err
	}

	var opts []notify.Option
	if a.cfg.Notify.Username != "" {
		opts = append(opts, notify.WithUsername(a.cfg.Notify.Username))
	}
	client, err := notify.New(webhookURL, opts...)
	if err != nil {
		return err
	}

	if a.dryRun {
		return nil
	}

	return client.Send(cmd.Context(), k, message)
}

func writeNotifyResult(w io.Writer, sendErr error) error {
	res := notifyResult{Success: true, Message: "Notification sent successfully"}
	if sendErr != nil {
		res = notifyResult{Error: sendErr.Error()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}
