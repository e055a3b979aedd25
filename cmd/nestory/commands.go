package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nestory/nestory/internal/backup"
	"github.com/nestory/nestory/internal/config"
	"github.com/nestory/nestory/internal/report"
	"github.com/nestory/nestory/internal/web"
)

const shutdownTimeout = 15 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nestory",
		Short:         "Home inventory for insurance documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newExportCmd(), newImportCmd(), newReportCmd())
	return root
}

// withApp loads configuration, wires the app, and tears it down after fn.
func withApp(fn func(a *app) error) error {
	a, err := newApp(config.Load())
	if err != nil {
		return err
	}
	defer a.cleanup()
	return fn(a)
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app) error {
				if addr == "" {
					addr = a.cfg.ListenAddr
				}
				server := web.NewServer(a.inventory, a.backups, a.logger)
				srv := server.HTTPServer(addr)

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				errCh := make(chan error, 1)
				go func() {
					a.logger.Info("starting server", "addr", addr, "version", a.cfg.AppVersion)
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					return fmt.Errorf("server error: %w", err)
				case <-ctx.Done():
				}

				a.logger.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default LISTEN_ADDR)")
	return cmd
}

// openOutput returns stdout for "" or "-", otherwise a created file.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the whole inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app) error {
				w, closeFn, err := openOutput(out, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := a.backups.Export(cmd.Context(), w); err != nil {
					_ = closeFn()
					return err
				}
				return closeFn()
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var modeFlag string
	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Import a JSON backup, merging into or replacing the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := backup.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer func() { _ = f.Close() }()

			return withApp(func(a *app) error {
				res, err := a.backups.Import(cmd.Context(), f, mode)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, res.Summary())
				for _, w := range res.Warnings {
					_, _ = fmt.Fprintln(out, "warning:", w)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", string(backup.ModeMerge), "merge or replace")
	return cmd
}

func newReportCmd() *cobra.Command {
	var formatFlag, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the insurance inventory report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				w, closeFn, err := openOutput(out, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if err := a.inventory.WriteReport(cmd.Context(), w, format); err != nil {
					_ = closeFn()
					return err
				}
				return closeFn()
			})
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(report.FormatPDF), "csv, json, or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
