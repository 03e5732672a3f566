package cli

import (
	"errors"
	"time"

	"draftpad/internal/publish"
	"draftpad/internal/render"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <draft-id>",
		Short: "Check a draft against the publish rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.store().GetDraft(cmdContext(cmd), args[0])
			if err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			errs := app.rules(app.msgs()).Validate(d.Fields())
			if err := writeOut(cmd, app, map[string]any{
				"id":     d.ID,
				"ok":     errs.OK(),
				"errors": errs.List(),
			}, nil); err != nil {
				return err
			}
			if !errs.OK() {
				return writeErr(cmd, invalidDraftError{id: d.ID, errs: errs})
			}
			return nil
		},
	}
}

func newRenderCmd(app *App) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "render <draft-id>",
		Short: "Render a draft body to sanitized HTML with a reading-time estimate",
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
			data := map[string]any{
				"id":          d.ID,
				"html":        html,
				"readingTime": render.ReadingTime(html),
			}
			if markdown {
				data["markdown"] = publish.RenderDraftMarkdown(d)
			}
			return writeOut(cmd, app, data, nil)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Include the markdown export")
	return cmd
}

func newPublishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <draft-id>",
		Short: "Publish (or update) a draft into the outbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s := app.store()
			d, err := s.GetDraft(ctx, args[0])
			if err != nil {
				return writeErr(cmd, draftErr(args[0], err))
			}
			now := time.Now().UTC()
			post, err := publish.Build(d, publish.BuildOptions{Validator: app.rules(app.msgs()), Now: now})
			if err != nil {
				if errors.Is(err, publish.ErrInvalidDraft) {
					log.WithField("draft", d.ID).Warn("publish refused: invalid draft")
				}
				return writeErr(cmd, err)
			}
			path, err := publish.WriteOutbox(s.OutboxDir(), post)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !post.IsUpdate {
				if err := s.MarkPublished(ctx, d.ID, post.Permlink, now); err != nil {
					return writeErr(cmd, err)
				}
			}
			log.WithFields(log.Fields{"draft": d.ID, "permlink": post.Permlink, "update": post.IsUpdate}).Info("post published")
			return writeOut(cmd, app, post, map[string]any{"outbox": path})
		},
	}
}
