package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"draftpad/internal/config"
	"draftpad/internal/format"
	"draftpad/internal/intl"
	"draftpad/internal/logging"
	"draftpad/internal/store"
	"draftpad/internal/tui"
	"draftpad/internal/validate"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Locale     string
	PrettyJSON bool
	Format     string

	cfg       config.Config
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "draftpad",
		Short:        "Write, preview, and publish blog posts from the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse drafts
  draftpad

  # Open the fullscreen editor on a new draft
  draftpad edit

  # Scriptable commands
  draftpad drafts list
  draftpad publish <draft-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runTUI(cmd, app, tui.RunOptions{})
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			logging.Discard()
			_ = app.logCloser.Close()
			app.logCloser = nil
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Workspace directory (default: $DRAFTPAD_DIR or ~/.draftpad)")
	cmd.PersistentFlags().StringVar(&app.Locale, "locale", "", "Message locale, e.g. en, de, fr (default: $DRAFTPAD_LOCALE or $LANG)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "json", "Output format ("+strings.Join(format.Formats, "|")+")")

	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDraftsCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves configuration (flags over env over dotenv), the workspace dir,
// and the log file.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("config: %w", err))
	}
	app.cfg = cfg

	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = strings.TrimSpace(cfg.Dir)
	}
	if app.Dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Dir = d
	}
	if strings.TrimSpace(app.Locale) == "" {
		app.Locale = cfg.Locale
	}

	s := app.store()
	if err := s.Ensure(); err != nil {
		return writeErr(cmd, err)
	}
	closer, err := logging.Setup(s.LogPath(), cfg.LogLevel)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("log file: %w", err))
	}
	app.logCloser = closer
	return nil
}

func (app *App) store() store.Store { return store.Store{Dir: app.Dir} }

func (app *App) msgs() *intl.Formatter {
	if strings.TrimSpace(app.Locale) != "" {
		return intl.New(intl.Resolve(app.Locale))
	}
	return intl.New(intl.FromEnv())
}

func (app *App) rules(msgs *intl.Formatter) *validate.Validator {
	return validate.New(msgs, validate.WithMaxTopics(app.cfg.MaxTopics))
}

func (app *App) tuiOptions() tui.Options {
	msgs := app.msgs()
	return tui.Options{
		Msgs:          msgs,
		Rules:         app.rules(msgs),
		ImageMaxBytes: app.cfg.ImageMaxBytes,
	}
}

func runTUI(cmd *cobra.Command, app *App, ro tui.RunOptions) error {
	ro.Options = app.tuiOptions()
	ro.Theme = app.cfg.Theme
	ro.NoColor = app.cfg.NoColor
	if err := tui.Run(cmdContext(cmd), app.store(), ro); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func writeOut(cmd *cobra.Command, app *App, data any, meta map[string]any) error {
	return format.Write(cmd.OutOrStdout(), format.Envelope{Data: data, Meta: meta}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
