package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fabiobatalha/processing/internal/articlemeta"
	"github.com/fabiobatalha/processing/internal/config"
	"github.com/fabiobatalha/processing/internal/dump"
	"github.com/fabiobatalha/processing/internal/logging"
	"github.com/fabiobatalha/processing/internal/metrics"
	"github.com/fabiobatalha/processing/internal/report"
	"github.com/fabiobatalha/processing/internal/validate"
)

// session holds what a report run needs: configuration, logger, counters
// and the validated ISSNs.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	issns    []string
	closeLog func() error
}

// newSession validates the shared flags and positional ISSNs.
func newSession(name string, args []string) (*session, error) {
	if !slices.Contains(logging.Levels, strings.ToUpper(loggingLevel)) {
		return nil, withCode(ExitConfigError, fmt.Errorf("invalid logging level %q, want one of %s",
			loggingLevel, strings.Join(logging.Levels, ", ")))
	}
	if !slices.Contains(report.Formats, outputFormat) {
		return nil, withCode(ExitConfigError, fmt.Errorf("%w: %q", report.ErrUnknownFormat, outputFormat))
	}

	logger, closeLog, err := logging.New(loggingLevel, loggingFile, name)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	s := &session{logger: logger, closeLog: closeLog, metrics: metrics.New()}

	path := configPath
	if path == "" {
		path = config.Path()
	}
	s.cfg, err = config.Load(path)
	if err != nil {
		s.closeLog()
		return nil, withCode(ExitConfigError, err)
	}

	logger.Info("Dumping data for: " + collection)

	if len(args) > 0 {
		valid, invalid := validate.ISSNs(args)
		for _, issn := range invalid {
			logger.Warn("Invalid ISSN ignored", zap.String("issn", issn))
		}
		if len(valid) == 0 {
			s.closeLog()
			return nil, withCode(ExitConfigError, errors.New("no valid ISSN given"))
		}
		s.issns = valid
	}
	return s, nil
}

// catalog returns a client for the configured catalog.
func (s *session) catalog() *articlemeta.Client {
	return articlemeta.NewClient(
		articlemeta.WithBaseURL(s.cfg.ArticleMeta.URL),
		articlemeta.WithHTTPClient(&http.Client{Timeout: seconds(s.cfg.ArticleMeta.TimeoutSeconds)}),
		articlemeta.WithRateLimit(s.cfg.RequestsPerSecond),
		articlemeta.WithLogger(s.logger.Named("articlemeta")),
	)
}

// run opens the report output, calls fn with a runner writing to it, then
// closes everything and writes the counters.
func (s *session) run(table string, header bool, catalog dump.Catalog, fn func(*dump.Runner) error) (err error) {
	defer func() {
		if werr := s.metrics.WriteFile(metricsFile); werr != nil && err == nil {
			err = werr
		}
		s.closeLog()
	}()

	var out io.Writer = os.Stdout
	if outputFile != "" && outputFormat != report.FormatSQLite {
		f, err := os.Create(outputFile)
		if err != nil {
			return withCode(ExitConfigError, fmt.Errorf("creating output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	sink, err := report.NewSink(outputFormat, out, outputFile, table, header && outputFormat == report.FormatCSV)
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	runner := dump.NewRunner(catalog, sink, dump.Options{
		Collection: collection,
		ISSNs:      s.issns,
		SkipFailed: skipFailed,
	}, dump.WithLogger(s.logger), dump.WithMetrics(s.metrics))

	runErr := fn(runner)
	if cerr := sink.Close(); cerr != nil && runErr == nil {
		runErr = fmt.Errorf("closing output: %w", cerr)
	}
	if runErr != nil {
		s.logger.Error("Report failed", zap.Error(runErr))
	}
	return runErr
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// requireCollection fails when --collection is missing.
func requireCollection(cmd *cobra.Command) error {
	if collection == "" {
		cmd.Usage()
		return withCode(ExitConfigError, errors.New("--collection is required"))
	}
	return nil
}
