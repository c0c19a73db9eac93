package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/document"
	"github.com/matchsense/matchsense/internal/ranking"
	"github.com/matchsense/matchsense/internal/report"
)

const (
	PromptShowReport = "Show report"
	PromptExportJSON = "Export to JSON"
	PromptExportCSV  = "Export to CSV"
	PromptDumpToFile = "Dump results to a temporary file"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptExportJSON, PromptExportCSV, PromptDumpToFile, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank [flags] RESUME...",
	Short: "Score many resumes against one job description and rank them",
	Long: "Score every resume against the job description and print them ranked by compatibility. " +
		"Arguments may be files or directories; directories are scanned for .pdf, .docx and .txt files.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("job", "J", "", "job description file (.pdf, .docx or .txt)")
	rankCmd.Flags().StringP("level", "l", "", "seniority required by the job (junior, mid, senior, specialist)")
	rankCmd.Flags().StringArrayP("weight", "w", nil, "override a factor weight, e.g. --weight skills=0.4")
	rankCmd.Flags().Bool("normalize", false, "normalize weights instead of rejecting an invalid sum")
	rankCmd.Flags().IntP("concurrency", "c", 0, "resumes analyzed in parallel (default from config)")
	rankCmd.Flags().BoolP("yes", "y", false, "do not open the interactive menu after ranking")
	rankCmd.Flags().StringP("export", "e", "", "export results as json or csv")
	rankCmd.Flags().StringP("output", "o", "", "export file (default is a timestamped file in current directory)")

	rankCmd.MarkFlagRequired("job")
}

func rank(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		return err
	}

	levelFlag, _ := cmd.Flags().GetString("level")
	level, err := parseJobLevel(levelFlag, config.JobLevel)
	if err != nil {
		return err
	}

	weights, err := weightsFromFlags(cmd, config)
	if err != nil {
		return err
	}

	var exportFormat report.Format
	if name, _ := cmd.Flags().GetString("export"); name != "" {
		if exportFormat, err = report.ParseFormat(name); err != nil {
			return err
		}
	}

	c, err := newComponents(ctx, config, weights, log)
	if err != nil {
		return err
	}

	jobPath, _ := cmd.Flags().GetString("job")
	jobText, err := c.extractor.ExtractFile(jobPath)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}

	files, err := collectResumeFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("exiting", zap.String("reason", "no resumes found"))
		return nil
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = config.Batch.Concurrency
	}

	log.Info("ranking resumes",
		zap.Int("count", len(files)),
		zap.String("job", jobPath),
		zap.Stringer("job_level", level),
		zap.Int("concurrency", concurrency),
	)

	ranker := ranking.New(c.analyzer, log, ranking.Options{Concurrency: concurrency, Metrics: c.metrics})
	batch, err := ranker.Rank(ctx, resumesFromFiles(files, c.extractor), jobText, level, &weights)
	if batch == nil {
		return fmt.Errorf("ranking resumes: %w", err)
	}
	if err != nil {
		log.Warn("ranking interrupted, showing partial results", zap.Error(err))
	}

	if config.MetricsFile != "" {
		if err := c.metrics.WriteTextfile(config.MetricsFile); err != nil {
			log.Warn("writing metrics", zap.Error(err))
		}
	}

	records := report.FromBatch(batch)
	out := cmd.OutOrStdout()
	title := filepath.Base(jobPath)

	if err := writeRanking(out, records); err != nil {
		return err
	}

	if exportFormat != "" {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = report.ExportName(exportFormat, time.Now())
		}
		if err := report.WriteFile(output, exportFormat, records); err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		log.Info("results exported", zap.String("filename", output), zap.String("format", string(exportFormat)))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return nil
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("reading action: %w", err)
		}

		if err := handleAction(action, out, title, records, log); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func handleAction(action string, out io.Writer, title string, records []report.Record, log *zap.Logger) error {
	switch action {
	case PromptExit:
		return errExit
	case PromptShowReport:
		return report.WriteText(out, title, records, time.Now())
	case PromptExportJSON, PromptExportCSV:
		format := report.FormatJSON
		if action == PromptExportCSV {
			format = report.FormatCSV
		}
		filename := report.ExportName(format, time.Now())
		if err := report.WriteFile(filename, format, records); err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		log.Info("results exported", zap.String("filename", filename))
		return nil
	case PromptDumpToFile:
		filename, err := report.DumpToTmpFile(records, report.FormatJSON)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		log.Info("dumping results to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// writeRanking prints one line per record in ranked order.
func writeRanking(w io.Writer, records []report.Record) error {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%2d. %-40s %s", i+1, rec.Filename, report.FormatScore(rec.Overall))
		if rec.Failed() {
			fmt.Fprintf(&b, "  [failed: %s]", rec.Error)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// collectResumeFiles expands directories into the supported files they
// contain. Explicit file arguments are kept as given so unsupported ones
// show up as failed entries.
func collectResumeFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %q: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !document.Supported(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
		}
	}
	return files, nil
}

// resumesFromFiles defers extraction to the ranking workers.
func resumesFromFiles(files []string, extractor *document.Extractor) []ranking.Resume {
	resumes := make([]ranking.Resume, len(files))
	for i, path := range files {
		resumes[i] = ranking.Resume{
			Filename: filepath.Base(path),
			Load: func() (string, error) {
				return extractor.ExtractFile(path)
			},
		}
	}
	return resumes
}
