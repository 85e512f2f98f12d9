package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert users and root objects for local testing",
}

var seedUserCmd = &cobra.Command{
	Use:   "user <username>...",
	Short: "Create users and print their ids",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeedUser,
}

var seedObjectCmd = &cobra.Command{
	Use:   "object <kind> <name>",
	Short: "Create a blog_post, user_page or another_object and print its id",
	Args:  cobra.ExactArgs(2),
	RunE:  runSeedObject,
}

func init() {
	seedCmd.AddCommand(seedUserCmd, seedObjectCmd)
	rootCmd.AddCommand(seedCmd)
}

func runSeedUser(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := newContext()
	defer cancel()

	targets := repository.NewTargetRepository(e.db)
	for _, name := range args {
		user, err := targets.CreateUser(ctx, name)
		if err != nil {
			return fmt.Errorf("create user %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.ID, user.Username)
	}
	return nil
}

func runSeedObject(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseTargetKind(args[0])
	if err != nil {
		return err
	}
	if !kind.IsRootObject() {
		return fmt.Errorf("%s is not a root object kind", kind)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := newContext()
	defer cancel()

	id, err := repository.NewTargetRepository(e.db).CreateRootObject(ctx, kind, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id, kind, args[1])
	return nil
}
