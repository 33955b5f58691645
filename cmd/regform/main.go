// Command regform runs the CraftMerge registration forms in a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &app{}
	root := &cobra.Command{
		Use:           "regform",
		Short:         "Register on CraftMerge from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().StringVar(&app.apiURL, "api-url", "", "registration API root (overrides REGFORM_API_BASE_URL)")
	root.PersistentFlags().StringVar(&app.locale, "locale", "", "message language, uk or en (overrides REGFORM_LOCALE)")

	root.AddCommand(
		newRegisterCmd(app),
		newResendCmd(app),
		newRoutesCmd(),
		newLintCmd(),
	)
	return root
}
