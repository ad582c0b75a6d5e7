// pdlmetrix: padel league ratings and player dashboards.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdlmetrix/pdlmetrix/api"
	"github.com/pdlmetrix/pdlmetrix/internal/canvas"
	"github.com/pdlmetrix/pdlmetrix/internal/common/clock"
	"github.com/pdlmetrix/pdlmetrix/internal/common/uuid"
	"github.com/pdlmetrix/pdlmetrix/internal/config"
	"github.com/pdlmetrix/pdlmetrix/internal/logging"
	"github.com/pdlmetrix/pdlmetrix/internal/report"
	"github.com/pdlmetrix/pdlmetrix/internal/services/league"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdlmetrix",
	Short: "pdlmetrix — padel league ratings and player dashboards",
	Long: `pdlmetrix keeps a doubles league: players, games and two Elo style
ratings per player, one by matches won and one by rounds won. It renders
player dashboards with win rate gauges and rating history charts, and
serves them over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger, err = logging.New(cfg.Logging, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skip config loading; version must work anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pdlmetrix %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		srv, err := api.NewServer(cfg, api.Deps{
			Repository:    st.Repository,
			Clock:         clock.New(),
			UUIDGenerator: uuid.New(),
			Logger:        logrus.NewEntry(logger),
			Version:       version,
		})
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("backup"); path != "" {
			if err := importFile(ctx, srv.League(), path, cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			return srv.ListenAndServe(addr)
		}
		return srv.ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: api.host:api.port)")
	serveCmd.Flags().String("backup", "", "backup file to import before serving")
}

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render player dashboards to files",
	Long: `Render the index page, player pages and dashboard surfaces into a
directory laid out like the HTTP server, ready to be served statically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		players, _ := cmd.Flags().GetStringSlice("player")
		all, _ := cmd.Flags().GetBool("all")
		format, _ := cmd.Flags().GetString("format")
		outDir, _ := cmd.Flags().GetString("out")
		backup, _ := cmd.Flags().GetString("backup")

		if all == (len(players) > 0) {
			return errors.New("choose either --player or --all")
		}
		if format == "" {
			format = cfg.Render.Format
		}
		kind, err := canvas.ParseKind(format)
		if err != nil {
			return err
		}

		runCfg := *cfg
		if backup != "" {
			// A backup renders from a scratch league, never the configured store.
			runCfg.Store.Driver = config.DriverMemory
		}
		st, err := openStore(&runCfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := newLeague(st, &runCfg, logger)
		if err != nil {
			return err
		}
		if backup != "" {
			if err := importFile(ctx, svc, backup, io.Discard); err != nil {
				return err
			}
		}

		if all {
			rows, err := svc.Leaderboard(ctx)
			if err != nil {
				return err
			}
			for _, row := range rows {
				players = append(players, row.Name)
			}
		}
		profiles := make([]*models.PlayerProfile, 0, len(players))
		for _, name := range players {
			p, err := svc.GetProfile(ctx, &league.GetProfileInput{Name: name})
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}

		renderer, err := report.NewRenderer(report.Config{
			Kind:        kind,
			Backend:     cfg.Render.Backend,
			Surfaces:    cfg.Render.Surfaces,
			Concurrency: cfg.Render.Concurrency,
			Logger:      logrus.NewEntry(logger),
		})
		if err != nil {
			return err
		}
		pages, err := report.NewPages(nil)
		if err != nil {
			return err
		}
		index, err := indexData(ctx, svc, &runCfg)
		if err != nil {
			return err
		}

		stats, err := report.WriteSite(ctx, outDir, renderer, pages, index, profiles)
		if err != nil {
			return err
		}
		for _, name := range stats.Skipped {
			logger.WithField("player", name).Warn("name cannot be a directory, player skipped")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d players (%d surfaces) to %s\n", stats.Players, stats.Surfaces, outDir)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringSlice("player", nil, "player to render (repeatable)")
	renderCmd.Flags().Bool("all", false, "render every player")
	renderCmd.Flags().String("format", "", "surface format: png or svg (default: render.format)")
	renderCmd.Flags().String("out", "out", "output directory")
	renderCmd.Flags().String("backup", "", "render from a backup file instead of the store")
}

// --- Import / Export Commands ---

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a backup into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePersistentStore(cfg, "import"); err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := newLeague(st, cfg, logger)
		if err != nil {
			return err
		}
		return importFile(ctx, svc, args[0], cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export every game as a backup (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePersistentStore(cfg, "export"); err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := newLeague(st, cfg, logger)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		out, err := svc.ExportBackup(ctx, w)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d games to %s\n", out.Games, args[0])
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  pdlmetrix — Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Store:         %s\n", storeLabel(cfg))
		fmt.Fprintf(out, "    Render:        %s via %s backend\n", cfg.Render.Format, cfg.Render.Backend)
		fmt.Fprintf(out, "    Timezone:      %s\n", cfg.League.Timezone)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Secrets:")
		for _, s := range config.CheckSecrets(cfg) {
			status := "not set"
			if s.IsSet {
				status = fmt.Sprintf("set (%s: %s)", s.Source, s.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", s.Name+":", status)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  League:")
		st, err := openStore(cfg, logger)
		if err != nil {
			fmt.Fprintf(out, "    unavailable: %v\n", err)
		} else {
			defer st.Close()
			svc, err := newLeague(st, cfg, logger)
			if err != nil {
				return err
			}
			sum, err := svc.Summary(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "    unavailable: %v\n", err)
			} else {
				fmt.Fprintf(out, "    Players:       %d\n", sum.Players)
				fmt.Fprintf(out, "    Games:         %d\n", sum.Games)
			}
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func storeLabel(c *config.Config) string {
	if strings.EqualFold(c.Store.Driver, config.DriverRedis) {
		return fmt.Sprintf("redis (%s, db %d)", c.Store.Redis.Addr, c.Store.Redis.DB)
	}
	return c.Store.Driver
}

// importFile loads a backup file into svc and reports what it added.
func importFile(ctx context.Context, svc league.Service, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := svc.ImportBackup(ctx, f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	fmt.Fprintf(out, "Imported %d games, %d new players from %s\n", res.Games, len(res.PlayersCreated), path)
	return nil
}

// indexData builds the league index page model.
func indexData(ctx context.Context, svc league.Service, c *config.Config) (report.IndexData, error) {
	players, err := svc.Leaderboard(ctx)
	if err != nil {
		return report.IndexData{}, err
	}
	games, err := svc.GamesTable(ctx, &league.GamesTableInput{})
	if err != nil {
		return report.IndexData{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return report.IndexData{}, err
	}
	return report.IndexData{
		Title:       c.League.Title,
		Players:     players,
		Games:       games,
		GeneratedAt: report.Timestamp(clock.New().Now().In(loc)),
	}, nil
}
