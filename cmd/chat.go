package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maximbilan/qianxun/internal/ui"
	"github.com/spf13/cobra"
)

var chatModel string

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Send one message and stream the reply",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap()
		if err != nil {
			exitWithError(err)
		}
		defer a.Close()

		key := chatModel
		if key == "" {
			key = a.cfg.DefaultModel
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if !streamChat(ctx, a.chatClient(), key, strings.Join(args, " "), os.Stdout, os.Stderr) {
			a.Close()
			os.Exit(1)
		}
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List chat providers",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap()
		if err != nil {
			exitWithError(err)
		}
		defer a.Close()
		listModels(a.chatClient(), os.Stdout)
	},
}

// streamChat prints deltas as they arrive. Failures go to errOut and report
// false.
func streamChat(ctx context.Context, sender ui.ChatSender, key, text string, out, errOut io.Writer) bool {
	streamed := false
	result := sender.SendMessage(ctx, key, text, func(delta, _ string) {
		streamed = true
		fmt.Fprint(out, delta)
	})
	if !result.Success {
		if streamed {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(errOut, result.Message)
		return false
	}
	if !streamed {
		fmt.Fprint(out, result.Message)
	}
	fmt.Fprintln(out)
	return true
}

func listModels(sender ui.ChatSender, w io.Writer) {
	for _, m := range sender.Models() {
		fmt.Fprintf(w, "%-10s %s\n", m.ID, m.Name)
	}
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "provider key (chatgpt, deepseek, claude)")
}
