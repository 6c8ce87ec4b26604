package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/smallbiznis/consultinvoice/internal/providers/pdf"
	"github.com/smallbiznis/consultinvoice/internal/review"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "reviewer",
		Short:         "Review a month of consultations and produce the practitioner invoice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.IntVar(&opts.year, "year", 0, "billing year (default: current)")
	flags.IntVar(&opts.month, "month", 0, "billing month 1-12 (default: current)")
	flags.StringVar(&opts.apiURL, "api-url", "", "consultation API base URL (default: $REVIEWER_API_URL)")
	flags.StringVar(&opts.storePath, "store", "", "SQLite file for approval decisions (default: $REVIEWER_STORE_PATH)")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "keep approval decisions in redis instead of SQLite")

	root.AddCommand(
		newListCmd(&opts),
		newDecisionCmd(&opts, "approve", consultationdomain.StatusApproved),
		newDecisionCmd(&opts, "reject", consultationdomain.StatusRejected),
		newDecisionCmd(&opts, "reset", consultationdomain.StatusPending),
		newBulkCmd(&opts, "approve-all", consultationdomain.StatusApproved),
		newBulkCmd(&opts, "reject-all", consultationdomain.StatusRejected),
		newSummaryCmd(&opts),
		newExportCmd(&opts),
	)
	return root
}

// withApp wires dependencies for one command run and releases them after.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx, a, err := newApp(cmd.Context(), *opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func newListCmd(opts *options) *cobra.Command {
	var status, source string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the month's consultations, summary and breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(status, source)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return review.Render(a.out, a.session.View(filter), a.session.Location())
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "filter rows: all, pending, approved, rejected")
	cmd.Flags().StringVar(&source, "source", "all", "filter rows: all, stripe, gohighlevel")
	return cmd
}

func newDecisionCmd(opts *options, use string, status consultationdomain.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: fmt.Sprintf("Mark consultations as %s", status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				for _, id := range args {
					if err := a.session.SetStatus(ctx, id, status); err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					fmt.Fprintf(a.out, "%s -> %s\n", id, status)
				}
				return nil
			})
		},
	}
}

func newBulkCmd(opts *options, use string, status consultationdomain.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Mark every pending consultation as %s", status),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					n   int
					err error
				)
				if status == consultationdomain.StatusApproved {
					n, err = a.session.ApproveAllPending(ctx)
				} else {
					n, err = a.session.RejectAllPending(ctx)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%d pending consultations marked %s\n", n, status)
				return nil
			})
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Total approved consultations by service type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				summary, remote := a.session.RemoteSummary(ctx)
				if !remote {
					fmt.Fprintln(a.out, "(computed locally)")
				}
				return review.RenderSummary(a.out, summary)
			})
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		formatRaw string
		out       string
		allowDemo bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write approved consultations as CSV or a PDF invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := review.ParseExportFormat(formatRaw)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				exporter := review.Exporter{
					PDF:          pdf.New(),
					Practitioner: a.cfg.PractitionerName,
					AllowDemo:    allowDemo,
					Now:          time.Now,
				}

				target := strings.TrimSpace(out)
				if target == "" {
					target = exporter.Filename(a.session, f)
				}
				if target == "-" {
					return exporter.Export(ctx, a.out, a.session, f)
				}

				file, err := os.Create(target)
				if err != nil {
					return err
				}
				if err := exporter.Export(ctx, file, a.session, f); err != nil {
					_ = file.Close()
					_ = os.Remove(target)
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "wrote %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&formatRaw, "format", "csv", "export format: csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, '-' for stdout (default: invoice_<...>.<format>)")
	cmd.Flags().BoolVar(&allowDemo, "allow-demo", false, "allow exporting the demo dataset")
	return cmd
}

func parseFilter(status, source string) (review.Filter, error) {
	var f review.Filter
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != "all" {
		st, err := consultationdomain.ParseStatus(status)
		if err != nil {
			return f, fmt.Errorf("--status: %w", err)
		}
		f.Status = st
	}
	source = strings.ToLower(strings.TrimSpace(source))
	if source != "" && source != "all" {
		src := consultationdomain.Source(source)
		if !src.Valid() {
			return f, fmt.Errorf("--source: unknown source %q", source)
		}
		f.Source = src
	}
	return f, nil
}
