package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/renderers/tui"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "register <investor|startup>",
		Short:     "Fill in and submit a registration form",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{schema.InvestorID, schema.StartupID},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			locale := a.localeName()

			// The success snapshot resets the form, so the email is kept
			// from the last transition that had one.
			var email string
			track := workflow.OnChange(func(s workflow.Snapshot) {
				if v := strings.TrimSpace(s.State.Value(workflow.EmailKey).String()); v != "" {
					email = v
				}
			})

			var wf *workflow.Workflow
			switch args[0] {
			case schema.InvestorID:
				wf = a.forms.Investor(locale, track)
			default:
				wf = a.forms.Startup(locale, track)
			}
			defer wf.Close()

			session := a.session(tui.WithOutput(cmd.OutOrStdout()))
			snap, err := session.Run(ctx, wf)
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			if err != nil {
				return err
			}
			if snap.Status != model.StatusSucceeded {
				return fmt.Errorf("registration not completed")
			}
			if args[0] != schema.InvestorID {
				return nil
			}

			resend := a.forms.Resend(locale)
			defer resend.Close()
			if err := resend.SetEmail(email); err != nil {
				return err
			}
			if _, err := session.OfferResend(ctx, resend); err != nil && !errors.Is(err, tui.ErrAborted) {
				return err
			}
			return nil
		},
	}
}
