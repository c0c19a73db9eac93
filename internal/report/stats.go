package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/scoring"
)

// TopCandidates is the number of records detailed by WriteText.
const TopCandidates = 5

// Stats summarizes a set of records. Failed analyses count with a score of 0.
type Stats struct {
	Total   int                      `json:"total"`
	Failed  int                      `json:"failed"`
	Average float64                  `json:"average"`
	Max     float64                  `json:"max"`
	Min     float64                  `json:"min"`
	Counts  map[scoring.Category]int `json:"counts"`
}

func Statistics(records []Record) Stats {
	stats := Stats{Counts: make(map[scoring.Category]int, len(scoring.Categories()))}
	for _, c := range scoring.Categories() {
		stats.Counts[c] = 0
	}
	if len(records) == 0 {
		return stats
	}

	stats.Total = len(records)
	stats.Max = records[0].Overall
	stats.Min = records[0].Overall

	var sum float64
	for _, rec := range records {
		if rec.Failed() {
			stats.Failed++
		}
		sum += rec.Overall
		stats.Max = max(stats.Max, rec.Overall)
		stats.Min = min(stats.Min, rec.Overall)
		stats.Counts[rec.category()]++
	}
	stats.Average = sum / float64(stats.Total)
	return stats
}

// FormatScore renders a score with one decimal and its category, e.g.
// "81.3% (Excellent)".
func FormatScore(score float64) string {
	return formatScore(score, scoring.CategoryFor(score))
}

func formatScore(score float64, category scoring.Category) string {
	return fmt.Sprintf("%.1f%% (%s)", score, category)
}

// WriteText writes a plain-text report: header, summary, category
// distribution and the best candidates. records are expected in ranked order.
func WriteText(w io.Writer, title string, records []Record, now time.Time) error {
	var b strings.Builder

	b.WriteString("RESUME COMPATIBILITY REPORT\n")
	b.WriteString(strings.Repeat("=", 27) + "\n")
	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(&b, "Position: %s\n", title)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	stats := Statistics(records)
	b.WriteString("SUMMARY\n")
	fmt.Fprintf(&b, "Resumes analyzed: %d\n", stats.Total)
	if stats.Failed > 0 {
		fmt.Fprintf(&b, "Failed analyses: %d\n", stats.Failed)
	}
	if stats.Total > 0 {
		fmt.Fprintf(&b, "Average score: %.1f%%\n", stats.Average)
		fmt.Fprintf(&b, "Best score: %.1f%%\n", stats.Max)
		fmt.Fprintf(&b, "Lowest score: %.1f%%\n", stats.Min)
	}

	b.WriteString("\nDISTRIBUTION\n")
	for _, c := range scoring.Categories() {
		fmt.Fprintf(&b, "%-10s %d\n", string(c)+":", stats.Counts[c])
	}

	if len(records) > 0 {
		b.WriteString("\nTOP CANDIDATES\n")
		for i, rec := range records[:min(TopCandidates, len(records))] {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, displayName(rec, i), formatScore(rec.Overall, rec.category()))
			if rec.Failed() {
				fmt.Fprintf(&b, "   Error: %s\n", rec.Error)
				continue
			}
			if rec.Profile != nil && rec.Profile.Contact() != "" {
				fmt.Fprintf(&b, "   Contact: %s\n", rec.Profile.Contact())
			}
			if len(rec.Strengths) > 0 {
				fmt.Fprintf(&b, "   Strengths: %s\n", strings.Join(rec.Strengths, listSeparator))
			}
			if len(rec.Weaknesses) > 0 {
				fmt.Fprintf(&b, "   Weaknesses: %s\n", strings.Join(rec.Weaknesses, listSeparator))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func displayName(rec Record, i int) string {
	name := rec.Filename
	if name == "" {
		name = fmt.Sprintf("resume #%d", i+1)
	}
	if rec.Profile != nil && rec.Profile.Name != "" {
		name += " (" + rec.Profile.Name + ")"
	}
	return name
}

// WriteRecord writes the detailed breakdown of a single analysis.
func WriteRecord(w io.Writer, rec Record) error {
	var b strings.Builder

	if rec.Filename != "" {
		fmt.Fprintf(&b, "Resume: %s\n", rec.Filename)
	}
	if rec.Failed() {
		fmt.Fprintf(&b, "Analysis failed: %s\n", rec.Error)
		_, err := io.WriteString(w, b.String())
		return err
	}

	if rec.Profile != nil {
		writeProfile(&b, *rec.Profile)
	}
	fmt.Fprintf(&b, "Compatibility: %s\n\n", formatScore(rec.Overall, rec.category()))

	b.WriteString("Factors:\n")
	for _, f := range scoring.Factors() {
		fmt.Fprintf(&b, "  %-12s %6.2f\n", f, rec.Scores.Get(f))
	}

	fmt.Fprintf(&b, "\nExperience: %d years (%s)\n", rec.ResumeExperience.Years, rec.ResumeExperience.Level)
	fmt.Fprintf(&b, "Education: %s\n", rec.ResumeEducation.Highest)
	fmt.Fprintf(&b, "Resume skills: %s\n", orNone(rec.ResumeSkills))
	fmt.Fprintf(&b, "Job skills: %s\n", orNone(rec.JobSkills))

	writeList(&b, "Strengths", rec.Strengths)
	writeList(&b, "Weaknesses", rec.Weaknesses)
	writeList(&b, "Recommendations", rec.Recommendations)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeProfile(b *strings.Builder, p extract.ProfileFact) {
	fields := []struct{ label, value string }{
		{"Candidate", p.Name},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Location", p.Location},
		{"Languages", strings.Join(p.Languages, ", ")},
		{"LinkedIn", p.LinkedIn},
		{"GitHub", p.GitHub},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(b, "%s: %s\n", f.label, f.value)
		}
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
