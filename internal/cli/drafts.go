package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"draftpad/internal/model"
	"draftpad/internal/publish"
	"draftpad/internal/render"
	"draftpad/internal/store"

	"github.com/spf13/cobra"
)

func newDraftsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drafts",
		Aliases: []string{"draft"},
		Short:   "Manage drafts",
	}
	cmd.AddCommand(newDraftsListCmd(app))
	cmd.AddCommand(newDraftsShowCmd(app))
	cmd.AddCommand(newDraftsNewCmd(app))
	cmd.AddCommand(newDraftsSetCmd(app))
	cmd.AddCommand(newDraftsRmCmd(app))
	cmd.AddCommand(newDraftsExportCmd(app))
	return cmd
}

func newDraftsListCmd(app *App) *cobra.Command {
	var published, unpublished bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drafts, most recently edited first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.store().ListDrafts(cmdContext(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]model.Draft, 0, len(ds))
			for _, d := range ds {
				if published && !d.IsUpdating() {
					continue
				}
				if unpublished && d.IsUpdating() {
					continue
				}
				out = append(out, d)
			}
			return writeOut(cmd, app, out, map[string]any{"count": len(out)})
		},
	}
	cmd.Flags().BoolVar(&published, "published", false, "Only drafts that were published")
	cmd.Flags().BoolVar(&unpublished, "unpublished", false, "Only drafts never published")
	cmd.MarkFlagsMutuallyExclusive("published", "unpublished")
	return cmd
}

func newDraftsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <draft-id>",
		Short: "Show a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.store().GetDraft(cmdContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			html, err := render.HTML(d.Body)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, d, map[string]any{
				"isUpdating":  d.IsUpdating(),
				"readingTime": render.ReadingTime(html),
			})
		},
	}
}

// fieldFlags are the draft field flags shared by `drafts new` and `drafts set`.
type fieldFlags struct {
	title    string
	topics   []string
	body     string
	bodyFile string
	reward   string
	upvote   bool
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Post title")
	cmd.Flags().StringSliceVar(&f.topics, "topic", nil, "Topic (repeatable or comma-separated)")
	cmd.Flags().StringVar(&f.body, "body", "", "Story body (markdown)")
	cmd.Flags().StringVar(&f.bodyFile, "body-file", "", "Read the story body from a file (- for stdin)")
	cmd.Flags().StringVar(&f.reward, "reward", "", "Reward option: 100|50|0 (all|half|none)")
	cmd.Flags().BoolVar(&f.upvote, "upvote", true, "Upvote the post when publishing")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// apply overlays the flags the user actually passed onto base.
func (f *fieldFlags) apply(cmd *cobra.Command, base model.Fields) (model.Fields, bool, error) {
	out := base.Clone()
	changed := false
	flags := cmd.Flags()
	if flags.Changed("title") {
		out.Title = f.title
		changed = true
	}
	if flags.Changed("topic") {
		out.Topics = model.NormalizeTopics(f.topics)
		changed = true
	}
	if flags.Changed("body") {
		out.Body = f.body
		changed = true
	}
	if flags.Changed("body-file") {
		b, err := readBodyFile(cmd, f.bodyFile)
		if err != nil {
			return out, false, err
		}
		out.Body = b
		changed = true
	}
	if flags.Changed("reward") {
		r, ok := model.ParseRewardOption(f.reward)
		if !ok {
			return out, false, fmt.Errorf("invalid --reward %q (want 100, 50 or 0)", f.reward)
		}
		out.Reward = r
		changed = true
	}
	if flags.Changed("upvote") {
		out.Upvote = f.upvote
		changed = true
	}
	return out, changed, nil
}

func readBodyFile(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func newDraftsNewCmd(app *App) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s := app.store()
			d, err := s.CreateDraft(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			fields, changed, err := ff.apply(cmd, d.Fields())
			if err != nil {
				_ = s.DeleteDraft(ctx, d.ID)
				return writeErr(cmd, err)
			}
			if changed {
				if d, err = s.SaveFields(ctx, d.ID, fields); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, d, nil)
		},
	}
	ff.register(cmd)
	return cmd
}

func newDraftsSetCmd(app *App) *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "set <draft-id>",
		Short: "Update draft fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s := app.store()
			d, err := s.GetDraft(ctx, args[0])
			if err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			fields, changed, err := ff.apply(cmd, d.Fields())
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if d, err = s.SaveFields(ctx, d.ID, fields); err != nil {
					return writeErr(cmd, draftErr(args[0], err))
				}
			}
			return writeOut(cmd, app, d, map[string]any{"changed": changed})
		},
	}
	ff.register(cmd)
	return cmd
}

func newDraftsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <draft-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a draft",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store().DeleteDraft(cmdContext(cmd), args[0]); err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true}, nil)
		},
	}
}

func newDraftsExportCmd(app *App) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "export <draft-id>",
		Short: "Export a draft as markdown with front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.store().GetDraft(cmdContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			md := publish.RenderDraftMarkdown(d)
			if strings.TrimSpace(to) == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			if err := store.WriteFileAtomic(to, []byte(md)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": d.ID, "path": to}, nil)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Write to this file instead of stdout")
	return cmd
}
