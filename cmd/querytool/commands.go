package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/config"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/httpapi"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/query/infrastructure/profile"
)

type globalFlags struct {
	profile  string
	logLevel string
}

func (f *globalFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.profile, "profile", "", "query profile file (overrides QUERY_PROFILE)")
	flags.StringVar(&f.logLevel, "log-level", "", "log level (overrides QUERY_LOG_LEVEL)")
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "querytool",
		Short:         "Run dynamic list queries against profiled entities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(
		newQueryCommand(flags),
		newServeCommand(flags),
		newCheckProfileCommand(),
	)
	return rootCmd
}

func newCheckProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-profile [file]",
		Short: "Validate a query profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.Load(args[0])
			if err != nil {
				return err
			}
			for _, name := range p.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\n", name)
			}
			return nil
		},
	}
}

type queryFlags struct {
	filters []string
	sort    string
	search  string
	page    int
	size    int
}

func (f queryFlags) params(flags *pflag.FlagSet) query.QueryParams {
	params := query.QueryParams{Filters: f.filters}
	if flags.Changed("page") {
		params.Page = option.Some(f.page)
	}
	if flags.Changed("size") {
		params.Size = option.Some(f.size)
	}
	if flags.Changed("sort") {
		params.Sort = option.Some(f.sort)
	}
	if flags.Changed("search") {
		params.Search = option.Some(f.search)
	}
	return params
}

func newQueryCommand(global *globalFlags) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "query [entity]",
		Short: "Run one list query and print the page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, global)
			if err != nil {
				return err
			}
			defer a.Close()

			lister, ok := a.handler.Lister(args[0])
			if !ok {
				return errors.Errorf("unknown entity \"%s\", expected one of %s", args[0], strings.Join(a.handler.Entities(), ", "))
			}
			page, err := lister(a.context(ctx), qf.params(cmd.Flags()))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&qf.filters, "filter", "f", nil, "filter field:op:value, repeatable")
	flags.StringVar(&qf.sort, "sort", "", "sort field:dir[,field:dir]")
	flags.StringVar(&qf.search, "search", "", "search term")
	flags.IntVar(&qf.page, "page", 1, "1-based page number")
	flags.IntVar(&qf.size, "size", query.DefaultPageSize, "page size")
	return cmd
}

func newServeCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /:entity for every profiled entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, global)
			if err != nil {
				return err
			}
			defer a.Close()

			router := httpapi.NewRouter(a.handler, a.logger)
			errs := make(chan error, 1)
			go func() {
				a.logger.Info("listening",
					zap.String("addr", a.cfg.ListenAddr),
					zap.Strings("entities", a.handler.Entities()),
				)
				errs <- router.Start(a.cfg.ListenAddr)
			}()

			select {
			case err := <-errs:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return router.Shutdown(shutdownCtx)
		},
	}
}

// context returns ctx carrying the application logger.
func (a *app) context(ctx context.Context) context.Context {
	return logging.NewContextWithLogger(ctx, a.logger, a.logger.Core().Enabled(zap.DebugLevel))
}

func loadConfig(ctx context.Context, global *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if global.profile != "" {
		cfg.Profile = global.profile
	}
	if global.logLevel != "" {
		cfg.LogLevel = global.logLevel
	}
	if cfg.Profile == "" {
		return nil, errors.New("no profile given, set QUERY_PROFILE or --profile")
	}
	return cfg, nil
}
