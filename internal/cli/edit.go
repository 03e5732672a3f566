package cli

import (
	"strings"

	"draftpad/internal/tui"

	"github.com/spf13/cobra"
)

func newEditCmd(app *App) *cobra.Command {
	var last bool
	cmd := &cobra.Command{
		Use:   "edit [draft-id]",
		Short: "Open the fullscreen editor (a new draft when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.store()
			id := ""
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			} else if last {
				prefs, err := s.LoadPrefs()
				if err != nil {
					return writeErr(cmd, err)
				}
				id = prefs.LastDraftID
			}
			if id == "" {
				return runTUI(cmd, app, tui.RunOptions{NewDraft: true})
			}
			// Fail before entering the alternate screen.
			if _, err := s.GetDraft(cmdContext(cmd), id); err != nil {
				return writeErr(cmd, draftErr(id, err))
			}
			return runTUI(cmd, app, tui.RunOptions{DraftID: id})
		},
	}
	cmd.Flags().BoolVar(&last, "last", false, "Reopen the most recently edited draft")
	return cmd
}
