package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jimmc414/onefilellm/internal/alias"
	"github.com/jimmc414/onefilellm/internal/stream"
)

// NewAliasCmd creates the alias command with its subcommands.
func NewAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage stored input aliases",
		Long: `Alias manages named shortcuts that expand to lists of inputs.

An alias name used as an aggregation input expands to its stored
targets, in order. Names must not contain '.', '/', ':', or '\'.

Examples:
  # Store two inputs under one name, then use it
  onefilellm alias add work https://github.com/user/repo ./docs
  onefilellm work

  # Capture one input per clipboard line
  onefilellm alias from-clipboard research

  # Show everything stored
  onefilellm alias list`,
	}

	cmd.PersistentFlags().String("dir", "",
		"Alias directory (default: user config dir)")

	cmd.AddCommand(newAliasAddCmd())
	cmd.AddCommand(newAliasFromClipboardCmd())
	cmd.AddCommand(newAliasListCmd())

	return cmd
}

func newAliasAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME TARGET...",
		Short: "Create or replace an alias",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runAliasAddCmd,
	}
}

func newAliasFromClipboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from-clipboard NAME",
		Short: "Create or replace an alias from clipboard lines",
		Args:  cobra.ExactArgs(1),
		RunE:  runAliasFromClipboardCmd,
	}
}

func newAliasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored aliases",
		Args:  cobra.NoArgs,
		RunE:  runAliasListCmd,
	}
}

// aliasStore builds the store from the --dir flag.
func aliasStore(cmd *cobra.Command) (*alias.Store, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	return alias.NewStore(dir), nil
}

// runAliasAddCmd executes the alias add command.
func runAliasAddCmd(cmd *cobra.Command, args []string) error {
	store, err := aliasStore(cmd)
	if err != nil {
		return err
	}

	name, targets := args[0], args[1:]
	if err := store.Add(name, targets); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Alias %q stores %d target(s)\n", name, len(targets))
	return nil
}

// runAliasFromClipboardCmd executes the alias from-clipboard command.
func runAliasFromClipboardCmd(cmd *cobra.Command, args []string) error {
	store, err := aliasStore(cmd)
	if err != nil {
		return err
	}

	content, ok := stream.ReadClipboard()
	if !ok {
		return errors.New("clipboard is empty or unavailable")
	}
	targets := alias.ParseTargets(content)
	if err := store.Add(args[0], targets); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Alias %q stores %d target(s) from the clipboard\n", args[0], len(targets))
	return nil
}

// runAliasListCmd executes the alias list command.
func runAliasListCmd(cmd *cobra.Command, _ []string) error {
	store, err := aliasStore(cmd)
	if err != nil {
		return err
	}

	aliases, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(aliases) == 0 {
		fmt.Fprintln(out, "No aliases stored.")
		fmt.Fprintln(out, "\nUse 'onefilellm alias add NAME TARGET...' to create one.")
		return nil
	}

	fmt.Fprintf(out, "Aliases (%d):\n\n", len(aliases))
	for _, a := range aliases {
		fmt.Fprintf(out, "%s:\n", a.Name)
		for _, t := range a.Targets {
			fmt.Fprintf(out, "  %s\n", t)
		}
	}
	return nil
}
