package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/engine"
	"github.com/matchsense/matchsense/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one resume against a job description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (.pdf, .docx or .txt)")
	analyzeCmd.Flags().StringP("job", "J", "", "job description file (.pdf, .docx or .txt)")
	analyzeCmd.Flags().StringP("level", "l", "", "seniority required by the job (junior, mid, senior, specialist)")
	analyzeCmd.Flags().StringArrayP("weight", "w", nil, "override a factor weight, e.g. --weight semantic=0.5")
	analyzeCmd.Flags().Bool("normalize", false, "normalize weights instead of rejecting an invalid sum")
	analyzeCmd.Flags().StringP("format", "f", "text", "output format: text or json")

	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagRequired("job")
}

func analyze(cmd *cobra.Command) error {
	ctx := context.Background()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format %q", format)
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

	c, err := newComponents(ctx, config, weights, log)
	if err != nil {
		return err
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	jobPath, _ := cmd.Flags().GetString("job")

	jobText, err := c.extractor.ExtractFile(jobPath)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}
	resumeText, err := c.extractor.ExtractFile(resumePath)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	log.Debug("analyzing resume",
		zap.String("resume", resumePath),
		zap.String("job", jobPath),
		zap.Stringer("job_level", level),
	)

	result, err := c.analyzer.Analyze(ctx, engine.Request{
		ResumeText: resumeText,
		JobText:    jobText,
		JobLevel:   level,
	})
	if err != nil {
		return fmt.Errorf("analyzing %q: %w", resumePath, err)
	}

	rec := report.NewRecord(filepath.Base(resumePath), result)
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	return report.WriteRecord(out, rec)
}
