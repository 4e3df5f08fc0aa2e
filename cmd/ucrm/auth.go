package main

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ucrm.com.tr/sdk/api"
	"ucrm.com.tr/sdk/auth"
	"ucrm.com.tr/sdk/config"
)

// readPassword is swapped out in tests.
var readPassword = func() (string, error) {
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the UCRM session",
		Long:  `Log in to the UCRM platform, log out, and inspect the active session.`,
	}

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoamiCommand())

	return cmd
}

func newLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to UCRM",
		Long: `Log in to the UCRM platform with your email and password.

The issued credentials are written to the session file and picked up by
every tool using the SDK on this machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, email)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, email string) error {
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := readPassword()
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	mgr, err := newSessionManager()
	if err != nil {
		return err
	}

	var loginOpts []api.LoginClientOption
	if url := config.GetConfig(config.KeyLoginURL); url != "" {
		loginOpts = append(loginOpts, api.WithLoginURL(url))
	}
	svc := auth.NewService(mgr, auth.WithLoginClient(api.NewLoginClient(loginOpts...)))

	result, err := svc.Login(cmd.Context(), auth.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Hoş geldiniz, %s (%s)\n", result.FullName, result.MemberName)
	return nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of UCRM",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newSessionManager()
			if err != nil {
				return err
			}
			auth.NewService(mgr).Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Oturum kapatıldı")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newSessionManager()
			if err != nil {
				return err
			}

			info := mgr.UserInfo()
			if info == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Aktif oturum yok")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:    %s (%s)\n", info.FullName, info.UserID)
			fmt.Fprintf(out, "Member:  %s (#%s)\n", info.MemberName, info.MemberNumber)
			fmt.Fprintf(out, "Host:    %s\n", mgr.HostURL())
			if len(info.LicenseInfo.AllLicenses) > 0 {
				fmt.Fprintf(out, "Licenses: %s\n", strings.Join(info.LicenseInfo.AllLicenses, ", "))
			}
			return nil
		},
	}
}
