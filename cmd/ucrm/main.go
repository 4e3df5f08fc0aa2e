package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ucrm.com.tr/sdk/config"
	"ucrm.com.tr/sdk/session"
)

var rootCmd = &cobra.Command{
	Use:   "ucrm",
	Short: "ucrm - command line access to the UCRM platform",
	Long:  `Utilities for managing UCRM sessions and inspecting the active login from the terminal.`,
}

func init() {
	rootCmd.AddCommand(newAuthCommand())
}

func main() {
	if err := config.InitGlobalConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newSessionManager builds the file-backed session manager the commands
// share. The session file location is configurable for multi-profile use.
func newSessionManager() (*session.Manager, error) {
	path := config.GetConfigWithDefault(config.KeySessionFile, session.DefaultSessionFile())
	store, err := session.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return session.NewManager(store,
		session.WithDefaultHost(config.GetConfig(config.KeyAPIURL)),
	), nil
}
