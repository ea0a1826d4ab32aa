package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sauerbraten/anonauth/internal/cardfile"
	"github.com/sauerbraten/anonauth/pkg/client"
)

var doorAddress string

var errDenied = errors.New("access denied")

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate at a door",
	Long: `Requests the door's broadcast, answers its challenge and reports whether
the door let us in. Exits with status 1 when access is denied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := cardfile.Read(credentialPath)
		if err != nil {
			return err
		}

		addr := doorAddress
		if addr == "" {
			addr = f.Door
		}
		if addr == "" {
			return errors.New("no door address: use --door")
		}

		c, err := client.DialCard(addr, f.Card())
		if err != nil {
			return err
		}
		defer c.Close()

		ok, err := c.Authenticate()
		if err != nil {
			return err
		}
		if !ok {
			return errDenied
		}

		fmt.Fprintln(cmd.OutOrStdout(), "access granted")
		return nil
	},
}

func init() {
	authCmd.Flags().StringVarP(&doorAddress, "door", "d", "",
		"door address (default is the address stored in the credential file)")
}
