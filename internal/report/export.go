package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matchsense/matchsense/internal/extract"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// listSeparator joins list columns in CSV output.
const listSeparator = "; "

var csvHeader = []string{
	"Filename",
	"Overall",
	"Category",
	"Semantic",
	"Skills",
	"Experience",
	"Education",
	"Soft Skills",
	"Resume Skills",
	"Job Skills",
	"Experience Years",
	"Experience Level",
	"Highest Education",
	"Strengths",
	"Weaknesses",
	"Recommendations",
	"Timestamp",
	"Error",
	"Candidate",
	"Email",
	"Phone",
	"Location",
	"Languages",
	"LinkedIn",
	"GitHub",
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}

// ReadJSON reads records written by WriteJSON. The input is checked against
// the record schema before decoding.
func ReadJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	if err := validateRecords(data); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}

// WriteCSV writes one flat row per record after a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Filename,
			formatFloat(rec.Overall),
			string(rec.Category),
			formatFloat(rec.Scores.Semantic),
			formatFloat(rec.Scores.Skills),
			formatFloat(rec.Scores.Experience),
			formatFloat(rec.Scores.Education),
			formatFloat(rec.Scores.SoftSkills),
			strings.Join(rec.ResumeSkills, listSeparator),
			strings.Join(rec.JobSkills, listSeparator),
			strconv.Itoa(rec.ResumeExperience.Years),
			rec.ResumeExperience.Level.String(),
			rec.ResumeEducation.Highest.String(),
			strings.Join(rec.Strengths, listSeparator),
			strings.Join(rec.Weaknesses, listSeparator),
			strings.Join(rec.Recommendations, listSeparator),
			formatTime(rec.Timestamp),
			rec.Error,
		}
		row = append(row, profileColumns(rec.Profile)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %q: %w", rec.Filename, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, format Format, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, format, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DumpToTmpFile writes records to a new file in the temporary directory and
// returns its name.
func DumpToTmpFile(records []Record, format Format) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "matchsense_*."+string(format))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := Write(file, format, records); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ExportName is the default export file name for a run at now.
func ExportName(format Format, now time.Time) string {
	return fmt.Sprintf("matchsense_%s.%s", now.Format("20060102_150405"), format)
}

func profileColumns(p *extract.ProfileFact) []string {
	if p == nil {
		return make([]string, 7)
	}
	return []string{
		p.Name,
		p.Email,
		p.Phone,
		p.Location,
		strings.Join(p.Languages, listSeparator),
		p.LinkedIn,
		p.GitHub,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
