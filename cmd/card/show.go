package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sauerbraten/anonauth/internal/cardfile"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show what a credential file contains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := cardfile.Read(credentialPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "user:  ", f.User)
		if f.Door != "" {
			fmt.Fprintln(out, "door:  ", f.Door)
		}
		fmt.Fprintln(out, "epochs:", f.Card().Epochs())
		for i, p := range f.Points {
			fmt.Fprintf(out, "  %d: %s\n", i, p)
		}
		return nil
	},
}
