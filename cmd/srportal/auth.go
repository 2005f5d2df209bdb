package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"
	"golang.org/x/term"

	"github.com/procare-io/srportal/internal/session"
	"github.com/procare-io/srportal/sdk/go/client"
	sdkerrors "github.com/procare-io/srportal/sdk/go/errors"
)

// passwordEnv lets scripts sign in without a prompt.
const passwordEnv = "SRPORTAL_PASSWORD"

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	Long: `Sign in with your portal e-mail address and password.

The password is read from --password-file, the SRPORTAL_PASSWORD
environment variable or an interactive prompt, in that order. When stdin
is not a terminal the first line of stdin is used.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out in every terminal",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	emailFlag        string
	passwordFileFlag string
	languageFlag     string
	remoteFlag       bool
)

func init() {
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "Account e-mail address")
	loginCmd.Flags().StringVar(&passwordFileFlag, "password-file", "", "Read the password from this file")
	loginCmd.Flags().StringVar(&languageFlag, "language", "", "Preferred language for new requests (en, de, fr, es)")
	_ = loginCmd.MarkFlagRequired("email")

	whoamiCmd.Flags().BoolVar(&remoteFlag, "remote", false, "Ask the API instead of reading the session file")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession()
	if err != nil {
		return err
	}
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	url := appCfg.Client.BaseURL
	c := client.NewClient(&client.Config{
		BaseURL: url,
		Timeout: appCfg.Client.Timeout,
		Debug:   debugFlag,
	})
	resp, err := c.Auth.Login(cmd.Context(), strings.TrimSpace(emailFlag), password)
	if err != nil {
		// A 401 here means bad credentials, not an expired session.
		if apiErr, ok := sdkerrors.AsAPIError(err); ok && apiErr.UserMessage() != "" {
			return errors.New(apiErr.UserMessage())
		}
		return err
	}

	id := session.FromLogin(resp, url)
	id.LanguageCode = languageFlag
	if err := sess.SignIn(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (%s)\n", id.Name, id.Email, id.Role)
	fmt.Fprintf(cmd.ErrOrStderr(), "Session saved to %s\n", store.Path())
	return nil
}

// readPassword trims one trailing newline; passwords may contain spaces.
func readPassword(cmd *cobra.Command) (string, error) {
	if passwordFileFlag != "" {
		data, err := os.ReadFile(passwordFileFlag)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		return trimNewline(string(data)), nil
	}
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if line = trimNewline(line); line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}

func trimNewline(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}

func runLogout(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession()
	if err != nil {
		return err
	}
	if err := sess.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess, c, err := requireSession()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if remoteFlag {
		p, err := c.Auth.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s>\nRole: %s\n", p.Name, p.Email, p.Role)
		if p.CustomerNumber != "" {
			fmt.Fprintf(out, "Customer: %s %s\n", p.CustomerNumber, p.CustomerName)
		}
		if len(p.Territories) > 0 {
			fmt.Fprintf(out, "Territories: %s\n", strings.Join(p.Territories, ", "))
		}
		return nil
	}

	id, err := sess.Identity()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s <%s>\nRole: %s\n", id.Name, id.Email, id.Role)
	if id.CustomerNumber != "" {
		fmt.Fprintf(out, "Customer: %s %s\n", id.CustomerNumber, id.CustomerName)
	}
	if len(id.Territories) > 0 {
		fmt.Fprintf(out, "Territories: %s\n", strings.Join(id.Territories, ", "))
	}
	if id.LanguageCode != "" {
		fmt.Fprintf(out, "Language: %s\n", id.LanguageCode)
	}
	fmt.Fprintf(out, "API: %s\n", baseURL(sess))
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires %s\n", timeago.English.FormatReference(id.ExpiresAt, time.Now()))
	}
	return nil
}
