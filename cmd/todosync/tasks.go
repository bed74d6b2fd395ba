package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"todosync/internal/app"
	"todosync/internal/operations"
	"todosync/internal/render"
	"todosync/internal/task"
	"todosync/internal/utils"
)

// withApp wires the application, runs fn, and tears down afterwards.
// Teardown waits briefly for fire-and-forget sync work so a short-lived
// CLI invocation does not abandon a pass it just triggered.
func withApp(fn func(a *app.App) error) error {
	a, err := app.New(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func requireUser(a *app.App) error {
	if !a.LoggedIn() {
		return utils.ErrNotLoggedIn()
	}
	return nil
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func afterMutation(a *app.App, message string) {
	a.Coordinator.NotifyMutation()
	if a.Online() {
		fmt.Println(message)
	} else {
		fmt.Println(message + " (offline, will sync later)")
	}
}

func newAddCmd() *cobra.Command {
	var description, status string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (works offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				created, err := operations.Create(a.Store, a.Alloc, a.User.ID, args[0], description, status)
				if err != nil {
					return err
				}

				afterMutation(a, fmt.Sprintf("Added task %d: %s", created.ID, created.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Task status (defaults to \"To Do\")")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show tasks, refreshing from the server when online",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				// App-start policy: snapshot merge while online, local
				// data as-is otherwise.
				a.Start(cmd.Context())

				if !a.Online() {
					render.OfflineNotice(os.Stdout)
				}

				tasks, err := operations.List(a.Store, a.User.ID)
				if err != nil {
					return err
				}
				render.TaskList(os.Stdout, tasks)
				return nil
			})
		},
	}
}

func newEditCmd() *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task (works offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}

				existing, err := a.Store.Get(id)
				if err != nil {
					return utils.ErrTaskNotFound(id)
				}

				if !cmd.Flags().Changed("title") {
					title = existing.Title
				}
				if !cmd.Flags().Changed("description") {
					description = existing.Description
				}
				if !cmd.Flags().Changed("status") {
					status = existing.Status
				}

				edited, err := operations.Edit(a.Store, id, title, description, status)
				if err != nil {
					return err
				}

				afterMutation(a, fmt.Sprintf("Updated task %d: %s", edited.ID, edited.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")
	return cmd
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed (works offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}

				done, err := operations.SetStatus(a.Store, id, task.StatusCompleted)
				if err != nil {
					return err
				}

				afterMutation(a, fmt.Sprintf("Completed task %d: %s", done.ID, done.Title))
				return nil
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task (works offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := requireUser(a); err != nil {
					return err
				}

				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}

				if err := operations.Remove(a.Store, id); err != nil {
					return err
				}

				afterMutation(a, fmt.Sprintf("Removed task %d", id))
				return nil
			})
		},
	}
}
