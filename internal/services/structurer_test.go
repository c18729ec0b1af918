package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

const sampleExtraction = "```json\n" + `{
  "full_name": "Jane Doe",
  "email": "jane@example.com",
  "phone": "+31 6 1234 5678",
  "education": [{"institution": "State University", "degree": "BSc", "start_date": "2015", "end_date": "2019"}],
  "experience": [{"company": "Acme", "position": "Engineer", "start_date": "2020-03", "end_date": "Present"}],
  "skills": [{"name": "Go"}, {"name": "PostgreSQL"}]
}` + "\n```"

func TestStructureParsesModelOutput(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return sampleExtraction, nil
	}}
	s := NewCVStructurer(gemini, 1, zap.NewNop())

	cv, err := s.Structure(context.Background(), "Jane Doe\nEngineer at Acme")
	if err != nil {
		t.Fatalf("Structure() error: %v", err)
	}

	if cv.FullName != "Jane Doe" {
		t.Errorf("full_name = %q, want Jane Doe", cv.FullName)
	}
	if len(cv.Experience) != 1 || cv.Experience[0].Position != "Engineer" {
		t.Errorf("experience = %+v, want one Engineer entry", cv.Experience)
	}
	if len(cv.Skills) != 2 {
		t.Errorf("skills = %d, want 2", len(cv.Skills))
	}
	if cv.Validity != models.ValidityUnknown {
		t.Errorf("validity = %s, want %s before validation", cv.Validity, models.ValidityUnknown)
	}
}

func TestStructureRejectsEmptyText(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		t.Fatal("model called for empty cv text")
		return "", nil
	}}
	s := NewCVStructurer(gemini, 1, zap.NewNop())

	if _, err := s.Structure(context.Background(), "   \n  "); err == nil {
		t.Fatal("expected an error for empty cv text")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeExtraction) {
		t.Errorf("error type = %v, want an extraction error", err)
	}
}

func TestStructureRejectsUnparseableResponse(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return "The CV describes an engineer named Jane.", nil
	}}
	s := NewCVStructurer(gemini, 1, zap.NewNop())

	if _, err := s.Structure(context.Background(), "Jane Doe"); err == nil {
		t.Fatal("expected an error for a non-JSON response")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeExtraction) {
		t.Errorf("error type = %v, want an extraction error", err)
	}
}

func TestStructurePropagatesModelFailure(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return "", errors.New("quota exceeded")
	}}
	s := NewCVStructurer(gemini, 1, zap.NewNop())

	if _, err := s.Structure(context.Background(), "Jane Doe"); err == nil {
		t.Fatal("expected an error when the model call fails")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fenced object", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare object", input: `{"a":1}`, want: `{"a":1}`},
		{name: "object with prose", input: "Here you go:\n{\"a\":1}\nHope this helps!", want: `{"a":1}`},
		{name: "array", input: "```json\n[1,2]\n```", want: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
