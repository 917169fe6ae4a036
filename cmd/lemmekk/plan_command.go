package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lemmekk/internal/config"
	"lemmekk/internal/extract"
)

type planFlags struct {
	sources  []string
	exclude  []string
	stego    bool
	boundary string
	workers  int
	json     bool
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan [path...]",
		Short: "Group split volumes and carve hidden archives into extraction jobs",
		Long: "Collect files from the configured sources (or the given paths), merge\n" +
			"multi-volume archives, drop incomplete sets, and optionally split archives\n" +
			"hidden behind image covers. Carving writes <name>.basis and <name>.file\n" +
			"next to each detected cover.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			local, err := applyPlanFlags(cmd, cfg, flags, args)
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			planner := extract.NewPlanner(extract.OptionsFromConfig(local), logger)
			report, err := planner.Plan(cmd.Context())
			if err != nil {
				return err
			}

			if flags.json {
				return writeJSON(cmd, planJSON(report))
			}
			printPlan(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flags.sources, "source", "s", nil, "Source file or directory (repeatable, replaces extract.sources)")
	cmd.Flags().StringSliceVarP(&flags.exclude, "exclude", "x", nil, "Extension to skip, without dot (repeatable, replaces extract.excluded_extensions)")
	cmd.Flags().BoolVar(&flags.stego, "stego", false, "Detect and carve archives hidden in image covers")
	cmd.Flags().StringVar(&flags.boundary, "boundary", "", "Carve boundary: trailer or archive")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Concurrent scan/carve workers")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the plan as JSON")
	return cmd
}

// applyPlanFlags returns a copy of cfg with command-line overrides applied
// and validated.
func applyPlanFlags(cmd *cobra.Command, cfg *config.Config, flags planFlags, args []string) (*config.Config, error) {
	local := *cfg
	local.Extract.Sources = append([]string(nil), cfg.Extract.Sources...)
	local.Extract.ExcludedExtensions = append([]string(nil), cfg.Extract.ExcludedExtensions...)

	sources := append(append([]string(nil), flags.sources...), args...)
	if len(sources) > 0 {
		local.Extract.Sources = local.Extract.Sources[:0]
		for _, src := range sources {
			expanded, err := config.ExpandPath(strings.TrimSpace(src))
			if err != nil {
				return nil, fmt.Errorf("resolve source %q: %w", src, err)
			}
			local.Extract.Sources = append(local.Extract.Sources, expanded)
		}
	}
	if cmd.Flags().Changed("exclude") {
		local.Extract.ExcludedExtensions = local.Extract.ExcludedExtensions[:0]
		for _, ext := range flags.exclude {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext != "" {
				local.Extract.ExcludedExtensions = append(local.Extract.ExcludedExtensions, ext)
			}
		}
	}
	if cmd.Flags().Changed("stego") {
		local.Extract.Steganography = flags.stego
	}
	if cmd.Flags().Changed("boundary") {
		local.Extract.CarveBoundary = strings.ToLower(strings.TrimSpace(flags.boundary))
	}
	if cmd.Flags().Changed("workers") {
		local.Extract.Workers = flags.workers
	}
	if err := local.Validate(); err != nil {
		return nil, err
	}
	return &local, nil
}

func printPlan(cmd *cobra.Command, report *extract.Report) {
	out := cmd.OutOrStdout()
	if len(report.Jobs) == 0 {
		fmt.Fprintf(out, "No extraction jobs (%d files scanned)\n", report.Files)
		return
	}

	tbl := tableSpec{
		headers: []string{"#", "Package", "Kind", "Path", "Files", "Size"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	}
	for i, job := range report.Jobs {
		files := job.Files()
		tbl.add(
			strconv.Itoa(i+1),
			job.Package,
			job.Kind.String(),
			job.Path,
			strconv.Itoa(len(files)),
			humanize.Bytes(totalSize(files)),
		)
	}
	fmt.Fprintln(out, tbl.render())
	fmt.Fprintln(out, planSummary(report))
}

func planSummary(report *extract.Report) string {
	parts := []string{
		fmt.Sprintf("%s jobs from %s files", humanize.Comma(int64(len(report.Jobs))), humanize.Comma(int64(report.Files))),
	}
	if report.Invalid > 0 {
		parts = append(parts, fmt.Sprintf("%d incomplete", report.Invalid))
	}
	if report.Carved > 0 {
		parts = append(parts, fmt.Sprintf("%d carved", report.Carved))
	}
	if report.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", report.Failed))
	}
	return strings.Join(parts, ", ")
}

func totalSize(paths []string) uint64 {
	var total uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
	}
	return total
}

type planOutput struct {
	RunID      string        `json:"run_id"`
	Files      int           `json:"files"`
	Aggregated int           `json:"aggregated"`
	Invalid    int           `json:"invalid"`
	Detected   int           `json:"detected"`
	Carved     int           `json:"carved"`
	Failed     int           `json:"failed"`
	DurationMS int64         `json:"duration_ms"`
	Jobs       []extract.Job `json:"jobs"`
}

func planJSON(report *extract.Report) planOutput {
	jobs := report.Jobs
	if jobs == nil {
		jobs = []extract.Job{}
	}
	return planOutput{
		RunID:      report.RunID,
		Files:      report.Files,
		Aggregated: report.Aggregated,
		Invalid:    report.Invalid,
		Detected:   report.Detected,
		Carved:     report.Carved,
		Failed:     report.Failed,
		DurationMS: report.Duration.Milliseconds(),
		Jobs:       jobs,
	}
}
