package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkarel/prospect/internal/model"
)

// LoadSubjectsCSV reads research subjects from a CSV file with a header row.
// Recognized columns (case-insensitive): Title, WebsiteURL, Address, Phone.
// Rows with neither a title nor a website are skipped.
func LoadSubjectsCSV(path string) ([]model.Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subjects file: %w", err)
	}
	defer f.Close()
	return parseSubjects(f)
}

func parseSubjects(r io.Reader) ([]model.Subject, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(record []string, names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	var subjects []model.Subject
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		s := model.Subject{
			Name:    field(record, "title", "name", "company"),
			Website: field(record, "websiteurl", "website", "url"),
			Address: field(record, "address"),
			Phone:   field(record, "phone"),
		}
		if s.Name == "" && s.Website == "" {
			continue
		}
		subjects = append(subjects, s)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("no usable subjects in file")
	}
	return subjects, nil
}

// subjectSlug builds a filesystem-safe base name for a subject's reports.
func subjectSlug(s model.Subject) string {
	name := strings.TrimSpace(strings.ToLower(s.DisplayName()))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == '/':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "subject"
	}
	return b.String()
}
