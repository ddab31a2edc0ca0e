package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/xptrack/internal/domain/aggregate"
	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/parser"
	"github.com/okian/xptrack/internal/domain/period"
	"github.com/okian/xptrack/pkg/logger"
)

type aggregateOptions struct {
	file    string
	name    string
	period  string
	start   string
	end     string
	pretty  bool
	verbose bool
}

func newAggregateCmd() *cobra.Command {
	var opts aggregateOptions
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a snapshot history file",
		Long: "Aggregate reads a JSON array of flat snapshots ({\"date\": ..., \"mining_xp\": ...}), " +
			"keeps those inside the selected range and prints the range deltas and chart series as JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAggregate(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to history JSON, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Range display name (defaults to the period label)")
	cmd.Flags().StringVarP(&opts.period, "period", "p", "", "Preset ending at the newest snapshot: day, week, month, year, all")
	cmd.Flags().StringVar(&opts.start, "start", "", "Range start, RFC3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.end, "end", "", "Range end, RFC3339 or YYYY-MM-DD")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log ignored fields")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("period", "start")
	cmd.MarkFlagsMutuallyExclusive("period", "end")

	return cmd
}

func runAggregate(ctx context.Context, cmd *cobra.Command, opts aggregateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	_ = logger.SetLevelString(level)
	log := logger.Named("xpdelta")

	snaps, err := readHistory(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	window, err := selectWindow(snaps, opts)
	if err != nil {
		return err
	}

	inRange := make([]model.RawSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if window.Contains(s.Date) {
			inRange = append(inRange, s)
		}
		if unknown := parser.Unrecognized(s); len(unknown) > 0 {
			log.Debug(ctx, "ignoring unrecognized fields",
				logger.Time("date", s.Date),
				logger.Any("fields", unknown),
			)
		}
	}
	if len(inRange) == 0 {
		log.Warn(ctx, "no snapshots inside range",
			logger.String("range", window.Name),
			logger.Int("snapshots", len(snaps)),
		)
	}

	name := window.Name
	if opts.name != "" {
		name = opts.name
	}
	result := aggregate.Aggregate(model.NewXpRange(name, inRange))

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// readHistory decodes a snapshot array and sorts it by date.
func readHistory(stdin io.Reader, path string) ([]model.RawSnapshot, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var snaps []model.RawSnapshot
	if err := json.NewDecoder(r).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps, nil
}

// selectWindow resolves the range flags. Presets end at the newest snapshot so
// old exports stay meaningful; with no flags the whole history is used.
func selectWindow(snaps []model.RawSnapshot, opts aggregateOptions) (period.Window, error) {
	if opts.start != "" || opts.end != "" {
		from, err := parseFlagTime(opts.start, false)
		if err != nil {
			return period.Window{}, err
		}
		to, err := parseFlagTime(opts.end, true)
		if err != nil {
			return period.Window{}, err
		}
		return period.Custom(from, to)
	}

	preset := period.All
	if opts.period != "" {
		var err error
		if preset, err = period.Parse(opts.period); err != nil {
			return period.Window{}, err
		}
	}

	now := time.Now()
	if len(snaps) > 0 {
		now = snaps[len(snaps)-1].Date
	}
	return preset.Resolve(now), nil
}

func parseFlagTime(s string, end bool) (time.Time, error) {
	t, err := model.ParseBound(s, end)
	if err != nil {
		return time.Time{}, errors.Join(fmt.Errorf("invalid --start/--end value %q", s), err)
	}
	return t, nil
}
