package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/procare-io/srportal/internal/tui"
	"github.com/procare-io/srportal/internal/wizard"
)

var newCmd = &cobra.Command{
	Use:     "new",
	Aliases: []string{"wizard", "submit"},
	Short:   "Submit a new service request with the interactive wizard",
	Long: `Open the request wizard in the terminal.

The flow is chosen from your role unless --flow names one. Flows come from
client.flows_path when it is set, otherwise from the built-in definitions.
If your session ends while the wizard is open, the wizard says so and keeps
your answers; sign in again from another terminal before submitting.`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

var flowFlag string

func init() {
	newCmd.Flags().StringVar(&flowFlag, "flow", "", "Flow to run (standard, quick or a name from flows_path)")
	rootCmd.AddCommand(newCmd)
}

func loadFlows() (*wizard.FlowSet, error) {
	if appCfg.Client.FlowsPath != "" {
		return wizard.LoadFlows(appCfg.Client.FlowsPath)
	}
	return wizard.DefaultFlows()
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess, c, err := requireSession()
	if err != nil {
		return err
	}
	id, err := sess.Identity()
	if err != nil {
		return err
	}
	// A rejected token ends the session everywhere; the watcher below then
	// tells the wizard.
	c.OnUnauthorized(func() {
		_ = sess.SignOut()
	})

	flows, err := loadFlows()
	if err != nil {
		return err
	}
	backend := tui.NewClientBackend(c)
	ref, err := tui.LoadReference(ctx, backend, id.LanguageCode)
	if err != nil {
		return err
	}
	wiz, err := wizard.New(wizard.Options{
		Actor:     id.Actor(),
		Flows:     flows,
		FlowName:  flowFlag,
		Reasons:   ref.Reasons,
		Submitter: backend,
		Validator: backend,
	})
	if err != nil {
		return err
	}

	events, err := sess.Watch(ctx)
	if err != nil {
		return err
	}
	model, err := tui.NewModel(tui.Options{
		Context:   ctx,
		Wizard:    wiz,
		Backend:   backend,
		Reference: ref,
		Session:   events,
		Debounce:  appCfg.Client.Debounce,
	})
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout())).Run()
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		printOutcome(cmd.OutOrStdout(), m)
	}
	return nil
}

// printOutcome leaves the request code in the scrollback; the model renders
// nothing once it quits.
func printOutcome(w io.Writer, m tui.Model) {
	if out := m.Outcome(); out != nil {
		fmt.Fprintf(w, "Submitted %s\n", out.RequestCode)
		return
	}
	if m.Cancelled() {
		fmt.Fprintln(w, "Cancelled, nothing was submitted.")
	}
}
