package cli

import (
	"strings"
	"testing"

	"github.com/mkarel/prospect/internal/model"
)

func TestParseSubjects(t *testing.T) {
	csv := `Title,WebsiteURL,Address,Phone
Acme Robotics,https://acme.test,"1 Main St, Oslo",555-0100
Beta Corp,https://beta.test,,
,,
,https://nameless.test,,
`
	subjects, err := parseSubjects(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseSubjects: %v", err)
	}
	if len(subjects) != 3 {
		t.Fatalf("subjects = %d, want 3 (empty row dropped)", len(subjects))
	}

	first := subjects[0]
	if first.Name != "Acme Robotics" || first.Website != "https://acme.test" {
		t.Fatalf("first subject wrong: %+v", first)
	}
	if first.Address != "1 Main St, Oslo" || first.Phone != "555-0100" {
		t.Fatalf("quoted fields not parsed: %+v", first)
	}
	if subjects[2].Name != "" || subjects[2].Website != "https://nameless.test" {
		t.Fatalf("website-only subject wrong: %+v", subjects[2])
	}
}

func TestParseSubjectsAlternateHeaders(t *testing.T) {
	csv := "name,website\nAcme,https://acme.test\n"
	subjects, err := parseSubjects(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseSubjects: %v", err)
	}
	if len(subjects) != 1 || subjects[0].Name != "Acme" {
		t.Fatalf("subjects = %+v", subjects)
	}
}

func TestParseSubjectsEmptyFile(t *testing.T) {
	if _, err := parseSubjects(strings.NewReader("Title,WebsiteURL\n")); err == nil {
		t.Fatal("want error for file with no subjects")
	}
}

func TestSubjectSlug(t *testing.T) {
	cases := []struct {
		subject model.Subject
		want    string
	}{
		{model.Subject{Name: "Acme Robotics"}, "acme_robotics"},
		{model.Subject{Name: "Sushi & Co."}, "sushi__co_"},
		{model.Subject{Website: "https://acme.test"}, "https__acme_test"},
	}
	for _, tc := range cases {
		if got := subjectSlug(tc.subject); got != tc.want {
			t.Errorf("subjectSlug(%+v) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}
