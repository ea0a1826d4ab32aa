package main

import (
	"github.com/spf13/cobra"
)

var credentialPath string

var rootCmd = &cobra.Command{
	Use:   "card",
	Short: "card - authenticate at a door using a credential file",
	Long: `card plays the part of a card: it loads a credential issued by
"manage enroll" or "enroll" and uses it to authenticate at a door.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&credentialPath, "credential", "c", "card.json",
		"credential file")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(showCmd)
}
