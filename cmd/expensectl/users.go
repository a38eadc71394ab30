package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func usersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users and manage administrator rights",
	}
	cmd.AddCommand(listUsersCmd(opts))
	cmd.AddCommand(setAdminCmd(opts, "promote", "Grant administrator rights", true))
	cmd.AddCommand(setAdminCmd(opts, "demote", "Revoke administrator rights", false))
	return cmd
}

func listUsersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Close()

			users, err := res.Users.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tADMIN")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Admin)
			}
			return w.Flush()
		},
	}
}

func setAdminCmd(opts *rootOptions, use, short string, admin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Close()

			ctx := cmd.Context()
			u, err := res.Users.FindByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			u, err = res.Users.SetAdmin(ctx, u.ID, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", u.Email, u.Admin)
			return nil
		},
	}
}
