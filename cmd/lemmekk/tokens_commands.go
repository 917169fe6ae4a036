package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lemmekk/internal/tokens"
)

func newTokensCommand(ctx *commandContext) *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage archive passwords",
	}

	tokensCmd.AddCommand(newTokensListCommand(ctx))
	tokensCmd.AddCommand(newTokensAddCommand(ctx))
	tokensCmd.AddCommand(newTokensRemoveCommand(ctx))
	tokensCmd.AddCommand(newTokensImportCommand(ctx))
	tokensCmd.AddCommand(newTokensExportCommand(ctx))

	return tokensCmd
}

func newTokensListCommand(ctx *commandContext) *cobra.Command {
	var plain bool
	var candidates bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTokenStore(func(store *tokens.Store) error {
				var (
					list []tokens.Token
					err  error
				)
				if candidates {
					list, err = store.Candidates(cmd.Context(), ctx.configValue().Tokens.RecentDays)
				} else {
					list, err = store.List(cmd.Context())
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if plain {
					for _, tok := range list {
						fmt.Fprintln(out, tok.Value)
					}
					return nil
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No tokens stored")
					return nil
				}
				tbl := tableSpec{
					headers: []string{"Token", "Uses", "Last used", "Added"},
					aligns:  []columnAlignment{alignLeft, alignRight},
				}
				for _, tok := range list {
					tbl.add(tok.Value, strconv.Itoa(tok.UsageCount), relativeTime(tok.LastUsedAt), relativeTime(tok.CreatedAt))
				}
				fmt.Fprintln(out, tbl.render())
				fmt.Fprintf(out, "%d tokens\n", len(list))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print one token per line")
	cmd.Flags().BoolVar(&candidates, "candidates", false, "Order tokens as the extractor tries them")
	return cmd
}

func newTokensAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <token>...",
		Short: "Add tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTokenStore(func(store *tokens.Store) error {
				added, err := store.Add(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d tokens\n", added, len(args))
				return nil
			})
		},
	}
}

func newTokensRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <token>...",
		Aliases: []string{"rm"},
		Short:   "Remove tokens",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTokenStore(func(store *tokens.Store) error {
				removed, err := store.Remove(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tokens\n", removed)
				return nil
			})
		},
	}
}

func newTokensImportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tokens from a plain or jtmdy text file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tokens.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open token file: %w", err)
				}
				defer f.Close()
				r = f
			}
			return ctx.withTokenStore(func(store *tokens.Store) error {
				res, err := store.Import(cmd.Context(), r, format)
				if err != nil {
					return err
				}
				msg := fmt.Sprintf("Imported %d tokens (%d new)", res.Read, res.Added)
				if res.Skipped > 0 {
					msg += fmt.Sprintf(", skipped %d malformed lines", res.Skipped)
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(tokens.FormatPlain), "File format: plain or jtmdy")
	return cmd
}

func newTokensExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tokens as plain or jtmdy text",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := tokens.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			return ctx.withTokenStore(func(store *tokens.Store) error {
				target := strings.TrimSpace(outputPath)
				if target == "" || target == "-" {
					return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
				}
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := store.Export(cmd.Context(), f, format); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close export file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported tokens to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(tokens.FormatPlain), "File format: plain or jtmdy")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
