package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boardharvest/pkg/session"
	"boardharvest/pkg/ui"
)

var sessionUserAgent string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored Pinterest sessions",
	Long: `Store the Pinterest session cookie so private and secret boards can be
harvested. Sessions are kept in the system keychain, or in an encrypted file
under ~/.config/boardharvest when no keychain is available.

BOARDHARVEST_SESSION overrides any stored session.`,
}

var sessionSetCmd = &cobra.Command{
	Use:   "set [account]",
	Short: "Store a session cookie",
	Long: `Store the value of the _pinterest_sess cookie. Copy it from your
browser's developer tools (Application → Cookies → pinterest.com). Pasting a
whole Cookie header works too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionSet,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [account]",
	Short: "Show a stored session with the cookie masked",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionShow,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [account]",
	Short: "Remove a stored session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionClear,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionSetCmd, sessionShowCmd, sessionListCmd, sessionClearCmd)

	sessionSetCmd.Flags().StringVar(&sessionUserAgent, "user-agent", "", "user agent of the browser the cookie came from")
}

func accountArg(args []string) string {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return session.DefaultAccount
}

func runSessionSet(cmd *cobra.Command, args []string) error {
	account := accountArg(args)

	mgr, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to open session store", err)
		return err
	}

	input, err := session.ReadSecret(fmt.Sprintf("Session cookie for %q: ", account))
	if err != nil {
		return fmt.Errorf("failed to read cookie: %w", err)
	}
	cookie := session.ParseCookie(input)
	if cookie == "" {
		ui.PrintError("No _pinterest_sess value found in the input")
		return session.ErrInvalid
	}

	s := &session.Session{Account: account, Cookie: cookie, UserAgent: sessionUserAgent}
	if err := mgr.Save(s); err != nil {
		ui.PrintError("Failed to store session", err)
		return err
	}

	ui.PrintSuccess("Session stored for " + account)
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	mgr, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to open session store", err)
		return err
	}

	s, err := mgr.Load(accountArg(args))
	if err != nil {
		ui.PrintError("No session stored", accountArg(args))
		return err
	}

	masked := s.Masked()
	ui.PrintInfo("Account", masked.Account)
	ui.PrintInfo("Cookie", masked.Cookie)
	if masked.UserAgent != "" {
		ui.PrintInfo("User agent", masked.UserAgent)
	}
	ui.PrintInfo("Updated", masked.LastModified.Format(time.RFC1123))
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	mgr, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to open session store", err)
		return err
	}

	sessions, err := mgr.List()
	if err != nil {
		ui.PrintError("Failed to list sessions", err)
		return err
	}
	if len(sessions) == 0 {
		ui.PrintNotice("No stored sessions. Run 'boardharvest session set' to add one.")
		return nil
	}
	for _, s := range sessions {
		m := s.Masked()
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  %s\n", ui.Cyan(m.Account), m.Cookie, ui.Dim(m.LastModified.Format("2006-01-02")))
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	account := accountArg(args)

	mgr, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to open session store", err)
		return err
	}
	if err := mgr.Delete(account); err != nil {
		ui.PrintError("Failed to remove session", err)
		return err
	}

	ui.PrintSuccess("Session removed for " + account)
	return nil
}
