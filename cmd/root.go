package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maximbilan/qianxun/internal/config"
	"github.com/maximbilan/qianxun/internal/notify"
	"github.com/maximbilan/qianxun/internal/ui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qianxun",
	Short: "Site navigation and AI chat in the terminal",
	Long:  `qianxun browses the sites served by the navigation backend and chats with ChatGPT, DeepSeek or Claude.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := bootstrap()
		if err != nil {
			exitWithError(err)
		}
		defer a.Close()

		center := notify.NewCenter(notify.WithToastDuration(a.toastDuration()))
		err = ui.Run(ui.Options{
			Title:    a.env.AppTitle(),
			NavPath:  a.cfg.NavPath,
			Provider: a.cfg.DefaultModel,
			Theme:    a.cfg.Theme,
			Timeout:  a.requestTimeout(),
			API:      a.apiClient(),
			Chat:     a.chatClient(),
			Notifier: center,
		})
		if err != nil {
			a.Close()
			exitWithError(err)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Set(args[0], args[1]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Set %s = %s\n", args[0], displayValue(args[0], args[1]))
	},
}

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value := config.Get(args[0])
		fmt.Printf("%s = %v\n", args[0], displayValue(args[0], value))
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.Dir()
		if err != nil {
			exitWithError(err)
		}

		cfg, err := config.Load()
		if err != nil {
			exitWithError(err)
		}

		if err := config.Save(cfg); err != nil {
			exitWithError(err)
		}

		fmt.Printf("Configuration initialized at %s\n", filepath.Join(configPath, "config.yaml"))
		fmt.Println("Set an API key with: qianxun config set deepseek_api_key YOUR_KEY")
	},
}

// isSensitiveConfigKey reports whether values under key must not be echoed.
func isSensitiveConfigKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key == "api_key" || strings.HasSuffix(key, "_api_key")
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(value string) string {
	if len(value) < 12 {
		return "***"
	}
	return value[:4] + "***" + value[len(value)-4:]
}

func displayValue(key string, value interface{}) interface{} {
	if !isSensitiveConfigKey(key) || value == nil {
		return value
	}
	return maskSecret(fmt.Sprint(value))
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func init() {
	configCmd.AddCommand(setCmd)
	configCmd.AddCommand(getCmd)
	configCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}
