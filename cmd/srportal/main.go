// Command srportal is the terminal client of the service request portal.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procare-io/srportal/internal/config"
	"github.com/procare-io/srportal/internal/session"
	"github.com/procare-io/srportal/internal/version"
	"github.com/procare-io/srportal/sdk/go/client"
	sdkerrors "github.com/procare-io/srportal/sdk/go/errors"
)

var rootCmd = &cobra.Command{
	Use:   "srportal",
	Short: "Service request portal client",
	Long: `srportal submits and tracks service requests from the terminal.

Sign in once with "srportal login"; every srportal command in every
terminal shares that session until it expires or you sign out.`,
	Version:           version.Full(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSONFlag {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.GetInfo())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "srportal %s\n", version.Full())
		return nil
	},
}

var (
	configPathFlag  string
	apiURLFlag      string
	sessionPathFlag string
	debugFlag       bool
	versionJSONFlag bool

	// appCfg is set by loadConfig before any command runs.
	appCfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Base URL of the portal API (overrides client.base_url)")
	rootCmd.PersistentFlags().StringVar(&sessionPathFlag, "session", "", "Session file (overrides client.session_path)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log HTTP requests and responses")

	versionCmd.Flags().BoolVar(&versionJSONFlag, "json", false, "Print as JSON")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe prefers the server's explanation over the wrapped API error.
func describe(err error) string {
	if sdkerrors.IsUnauthorized(err) {
		return "your session is no longer valid; run \"srportal login\" again"
	}
	if apiErr, ok := sdkerrors.AsAPIError(err); ok {
		if msg := apiErr.UserMessage(); msg != "" {
			return msg
		}
		return fmt.Sprintf("the portal API failed (%d), try again later", apiErr.StatusCode)
	}
	return err.Error()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if appCfg != nil {
		return nil
	}
	overrides := map[string]interface{}{}
	if apiURLFlag != "" {
		overrides["client.base_url"] = apiURLFlag
	}
	if sessionPathFlag != "" {
		overrides["client.session_path"] = sessionPathFlag
	}
	if err := config.LoadWithOverrides(configPathFlag, overrides); err != nil {
		return err
	}
	appCfg = config.Get()
	return nil
}

// openSession loads the shared session file.
func openSession() (*session.Session, *session.FileStore, error) {
	path := appCfg.Client.SessionPath
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	store := session.NewFileStore(path)
	sess, err := session.New(store)
	if err != nil {
		return nil, nil, err
	}
	return sess, store, nil
}

// baseURL is the API the session was issued by, unless --api-url says
// otherwise.
func baseURL(sess *session.Session) string {
	if apiURLFlag == "" && sess != nil {
		if id, err := sess.Identity(); err == nil && id.BaseURL != "" {
			return id.BaseURL
		}
	}
	return appCfg.Client.BaseURL
}

func newClient(sess *session.Session) *client.Client {
	cfg := &client.Config{
		BaseURL:   baseURL(sess),
		UserAgent: version.UserAgent("srportal"),
		Timeout:   appCfg.Client.Timeout,
		Debug:     debugFlag,
	}
	if sess != nil {
		cfg.Auth = sess
	}
	return client.NewClient(cfg)
}

// requireSession returns the session and an authenticated client, or an
// error telling the user to sign in.
func requireSession() (*session.Session, *client.Client, error) {
	sess, _, err := openSession()
	if err != nil {
		return nil, nil, err
	}
	if _, err := sess.Identity(); err != nil {
		return nil, nil, fmt.Errorf("%w: run \"srportal login\" first", err)
	}
	return sess, newClient(sess), nil
}
