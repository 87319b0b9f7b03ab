package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casevault/internal/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}

	cmd.AddCommand(newTokenGenerateCmd())
	cmd.AddCommand(newTokenHashCmd())
	return cmd
}

// newTokenGenerateCmd prints a fresh token and its bcrypt hash. The plain
// token goes to the caller once; only the hash should be stored at the
// fronting gateway.
func newTokenGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a new API token and its storable hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateToken()
			if err != nil {
				return err
			}
			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nhash: %s\n", token, hash)
			return nil
		},
	}
}

func newTokenHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <token>",
		Short: "Hash an existing API token for storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
