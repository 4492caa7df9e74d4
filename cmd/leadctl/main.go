// Command leadctl is the terminal client for the lead list: it signs in,
// browses leads in an incrementally loaded list and dumps them headlessly.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"leadscope_backend/internal/leads/render"
	"leadscope_backend/platform/logger"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

const defaultBaseURL = "http://localhost:8080"

var (
	baseURL  string
	token    string
	logFile  string
	search   string
	platform string
	sortBy   string
	page     int
)

var rootCmd = &cobra.Command{
	Use:           "leadctl",
	Short:         "Terminal client for the lead dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print an access token",
	Long: `Signs in with email and password and prints the access token.

Example:
  export LEADSCOPE_TOKEN=$(leadctl login --email ada@example.com --password ...)`,
	RunE: runLogin,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse leads; more rows load as you scroll",
	Long: `Opens the lead list starting at --page. Scrolling near the end loads the
next page.

Keys: j/k move, pgdn/pgup page, o open, d delete (y/n confirms), q quit.`,
	RunE: runBrowse,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every lead row, loading pages until the list ends",
	RunE:  runDump,
}

var (
	loginEmail    string
	loginPassword string
	dumpHeight    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("LEADSCOPE_URL", defaultBaseURL), "Server base URL (or set LEADSCOPE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LEADSCOPE_TOKEN"), "Access token (or set LEADSCOPE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	for _, cmd := range []*cobra.Command{browseCmd, dumpCmd} {
		cmd.Flags().StringVar(&search, "search", "", "Filter by username, name, bio or email")
		cmd.Flags().StringVar(&platform, "platform", "all", "Filter by platform")
		cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by engagement_score, followers, created_at or username")
		cmd.Flags().IntVar(&page, "page", 1, "Page to start from")
	}
	dumpCmd.Flags().IntVar(&dumpHeight, "height", 40, "Rows in the simulated viewport")

	rootCmd.AddCommand(loginCmd, browseCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// openLogger writes to --log-file when set and to fallback otherwise. The
// returned close func is never nil.
func openLogger(fallback io.Writer) (*logger.Logger, func(), error) {
	if logFile == "" {
		return logger.NewWithWriter("production", fallback), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.NewWithWriter("production", f), func() { _ = f.Close() }, nil
}

// terminalLocale resolves number formatting from the POSIX locale variables
// in their usual precedence.
func terminalLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return render.ResolvePOSIXLocale(v)
		}
	}
	return render.DefaultTag
}

func requireToken() error {
	if token == "" {
		return fmt.Errorf("no access token: run leadctl login or set LEADSCOPE_TOKEN")
	}
	return nil
}
