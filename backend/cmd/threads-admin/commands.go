package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/itchan-dev/threads/backend/internal/setup"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/domain"
	"github.com/spf13/cobra"
)

// connect is swapped in tests
var connect = func(ctx context.Context, configFolder string) (*setup.Dependencies, error) {
	cfg := config.MustLoad(configFolder)
	if err := requirePersistentStorage(cfg); err != nil {
		return nil, err
	}
	return setup.SetupDependencies(ctx, cfg)
}

// in-memory data lives inside the API process, so changes made here would never reach it
func requirePersistentStorage(cfg *config.Config) error {
	if cfg.Public.Storage == config.StorageMemory {
		return fmt.Errorf("threads-admin needs persistent storage, config uses %q: add users to seed_users in public.yaml instead", config.StorageMemory)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var configFolder string

	root := &cobra.Command{
		Use:          "threads-admin",
		Short:        "Maintenance commands for the threads service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFolder, "config_folder", envOr("CONFIG_FOLDER", "backend/config"), "path to folder with configs")

	withDeps := func(run func(ctx context.Context, deps *setup.Dependencies, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			deps, err := connect(ctx, configFolder)
			if err != nil {
				return err
			}
			defer deps.Close()
			return run(ctx, deps, cmd.OutOrStdout(), args)
		}
	}

	users := &cobra.Command{Use: "users", Short: "Manage users"}
	var name, image string
	createUser := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print its id",
		RunE: withDeps(func(ctx context.Context, deps *setup.Dependencies, out io.Writer, args []string) error {
			user, err := deps.Storage.CreateUser(ctx, domain.UserCreationData{Name: name, Image: image})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, user.Id)
			return nil
		}),
	}
	createUser.Flags().StringVar(&name, "name", "", "display name")
	createUser.Flags().StringVar(&image, "image", "", "avatar url")
	createUser.MarkFlagRequired("name")
	users.AddCommand(createUser)

	threads := &cobra.Command{Use: "threads", Short: "Inspect threads"}
	showThread := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a thread with its populated replies",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, deps *setup.Dependencies, out io.Writer, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid thread id %q: %w", args[0], err)
			}
			thread, err := deps.Thread.GetById(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(out, thread.String())
			return nil
		}),
	}
	threads.AddCommand(showThread)

	root.AddCommand(users, threads)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
