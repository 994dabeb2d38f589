package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/user/course-harvester/internal/adapter/chromedp_browser"
	"github.com/user/course-harvester/internal/adapter/dirsnapshot"
	"github.com/user/course-harvester/internal/adapter/icontable"
	"github.com/user/course-harvester/internal/adapter/terminal"
	"github.com/user/course-harvester/internal/delivery/http/handler"
	"github.com/user/course-harvester/internal/delivery/http/router"
	"github.com/user/course-harvester/internal/entity"
	"github.com/user/course-harvester/internal/usecase"
	"github.com/user/course-harvester/pkg/config"
	"github.com/user/course-harvester/pkg/logger"
	"github.com/user/course-harvester/pkg/utils"
	"go.uber.org/zap"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "harvester [moodle-url]",
	Short:        "harvester logs into a Moodle portal and downloads a course's files.",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runHarvest,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file with configuration")
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func loadIconTable(path string) (entity.ClassificationTable, error) {
	if path == "" {
		return icontable.Default()
	}
	return icontable.Load(afero.NewOsFs(), path)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := loadIconTable(cfg.IconTable)
	if err != nil {
		return err
	}
	log.Info("Icon table loaded", zap.Int("signatures", table.Len()))

	operator := terminal.NewStdio()
	var entry string
	if len(args) == 1 {
		entry = args[0]
	} else if entry, err = operator.ReadLine(ctx, "Enter moodle link: "); err != nil {
		return err
	}
	entryURL, err := utils.ParseEntryURL(strings.TrimSpace(entry))
	if err != nil {
		return err
	}

	snapshots := dirsnapshot.NewOS(cfg.DownloadDir)
	if err := snapshots.Prepare(); err != nil {
		return err
	}

	progress := usecase.NewProgress()
	if cfg.MetricsAddr != "" {
		shutdown := serveStatus(cfg.MetricsAddr, progress, log)
		defer shutdown()
	}

	session, err := chromedp_browser.NewSession(ctx, chromedp_browser.Options{
		Headless:       cfg.BrowserHeadless,
		ExecPath:       cfg.BrowserExecPath,
		RemoteURL:      cfg.BrowserRemoteURL,
		UserAgent:      cfg.BrowserUserAgent,
		DownloadDir:    snapshots.Dir(),
		ElementTimeout: cfg.ElementTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Failed to close browser", zap.Error(err))
		}
	}()

	retrieval := usecase.NewRetrieval(session, operator, usecase.NewClassifier(table), snapshots,
		usecase.RetrievalOptions{
			Selectors:         usecase.DefaultSelectors(),
			SelectionAttempts: cfg.SelectionAttempts,
			Convergence: usecase.ConvergenceOptions{
				Interval:    cfg.PollInterval,
				StablePolls: cfg.StablePolls,
				MaxPolls:    cfg.MaxPolls,
				Timeout:     cfg.ConvergenceTimeout,
			},
		}, progress, log)

	if err := retrieval.Run(ctx, entryURL.String()); err != nil {
		log.Error("Retrieval failed", zap.Error(err))
		return err
	}
	log.Info("Downloads saved", zap.String("download_dir", snapshots.Dir()))
	return nil
}

// serveStatus starts the status server and returns a function that stops it.
func serveStatus(addr string, progress *usecase.Progress, log *zap.Logger) func() {
	httpLog := log.Named("http")
	server := &http.Server{
		Addr:         addr,
		Handler:      router.New(handler.NewHandler(progress, httpLog), httpLog),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		httpLog.Info("Starting status server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpLog.Error("Status server stopped", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			httpLog.Warn("Status server shutdown", zap.Error(err))
		}
	}
}
