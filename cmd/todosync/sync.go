package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todosync/internal/app"
	syncer "todosync/internal/sync"
)

func describeResult(result *syncer.Result) string {
	if result == nil {
		return "sync failed, local data unchanged"
	}
	if result.Skipped {
		return "skipped (no credential); changes remain queued locally"
	}
	return fmt.Sprintf("%d created, %d updated, %d deleted, %d still pending (%.2fs)",
		result.Created, result.Updated, result.Deleted, result.Failed,
		result.Duration.Seconds())
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending local changes to the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if !a.Online() {
					fmt.Println("Offline; changes remain queued locally.")
					return nil
				}

				result, ran := a.Coordinator.SyncNow(cmd.Context())
				if !ran {
					fmt.Println("A sync is already in progress.")
					return nil
				}

				fmt.Println("Sync: " + describeResult(result))
				return nil
			})
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Replace local data with the server snapshot, keeping pending changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				if !a.Online() {
					fmt.Println("Offline; using local data.")
					return nil
				}

				result, ran, err := a.Coordinator.RefreshNow(cmd.Context())
				if !ran {
					fmt.Println("A sync is already in progress.")
					return nil
				}
				if err != nil {
					// Non-fatal: the local cache still serves reads.
					fmt.Printf("Could not refresh from server, using local data: %v\n", err)
					return nil
				}

				fmt.Println("Refresh: " + describeResult(result))
				return nil
			})
		},
	}
}
