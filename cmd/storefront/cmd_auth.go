package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginEmail, loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.Login(cmd.Context(), loginEmail, loginPassword); err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), "Signed in as "+app.auth.User().Name)
		return nil
	},
}

var otpCmd = &cobra.Command{
	Use:   "otp",
	Short: "Sign in with a one-time code sent to your phone",
}

var otpSendCmd = &cobra.Command{
	Use:   "send <phone>",
	Short: "Send a login code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.auth.SendOTP(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), msg)
		return nil
	},
}

var otpVerifyCmd = &cobra.Command{
	Use:   "verify <phone> <code>",
	Short: "Verify a login code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.VerifyOTP(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), "Signed in as "+app.auth.User().Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.auth.Logout(cmd.Context())
		printOK(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if !app.auth.CheckAuthStatus(cmd.Context()) {
			fmt.Fprintln(w, mutedStyle.Render("Not signed in."))
			return nil
		}
		u := app.auth.User()
		fmt.Fprintf(w, "%s (%s)\n", titleStyle.Render(u.Name), u.Role)
		if u.Email != "" {
			fmt.Fprintln(w, u.Email)
		}
		if u.Phone != "" {
			fmt.Fprintln(w, u.Phone)
		}
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.RefreshAuthToken(cmd.Context()); err != nil {
			return err
		}
		printOK(cmd.OutOrStdout(), "Session refreshed")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	otpCmd.AddCommand(otpSendCmd, otpVerifyCmd)
}
