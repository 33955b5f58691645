package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftmerge/go-regform/pkg/renderers/tui"
)

func newResendCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resend-activation",
		Short: "Send the account activation email again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			resend := a.forms.Resend(a.localeName())
			defer resend.Close()

			if email == "" {
				snap, err := a.session(tui.WithOutput(cmd.OutOrStdout())).RunResend(ctx, resend)
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				if err != nil {
					return err
				}
				if snap.Error != "" {
					return errors.New(snap.Error)
				}
				return nil
			}

			if err := resend.SetEmail(email); err != nil {
				return err
			}
			snap, err := resend.Send(ctx)
			if err != nil {
				return err
			}
			if snap.Error != "" {
				return errors.New(snap.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snap.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email; prompts when empty")
	return cmd
}
