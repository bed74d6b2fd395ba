package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todosync/internal/app"
	"todosync/internal/credentials"
	"todosync/internal/session"
)

func newLoginCmd() *cobra.Command {
	var userID int64
	var username, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the user identity and API token used for syncing",
		Long: `login records which user's tasks to sync and, optionally, stores the
bearer token in the OS keyring. The token can also be supplied via the
` + credentials.EnvToken + ` environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token != "" {
				if err := credentials.Store(token); err != nil {
					return err
				}
			}

			if err := session.Save(session.User{ID: userID, Username: username}); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (user %d).\n", username, userID)

			tok := credentials.Resolve()
			if tok.Source == credentials.SourceNone {
				fmt.Println("No API token found; tasks will stay local until one is provided.")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Server-side user id")
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token to store in the keyring")
	cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session, stored token, and local task data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := credentials.Clear(); err != nil {
					return err
				}
				if err := session.Clear(); err != nil {
					return err
				}
				// Local data belongs to the logged-out user; the server
				// keeps the durable copy of everything synced.
				if err := a.Store.Clear(); err != nil {
					return err
				}

				fmt.Println("Logged out.")
				return nil
			})
		},
	}
}
