package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/sessionauth/internal/credentials"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt digest of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest, err := credentials.HashPassword(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(digest))
		return err
	},
}
