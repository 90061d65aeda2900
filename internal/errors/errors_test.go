package errors

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be within [0,1]")
	err := NewConfigError("matching.fuzzy_threshold", "1.5", underlying)

	if err.Field != "matching.fuzzy_threshold" {
		t.Errorf("Expected Field to be 'matching.fuzzy_threshold', got %s", err.Field)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "config error for field matching.fuzzy_threshold (value 1.5): must be within [0,1]"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if time.Since(err.Timestamp) > time.Minute {
		t.Errorf("Expected a fresh timestamp, got %v", err.Timestamp)
	}
}

func TestVocabularyError(t *testing.T) {
	underlying := errors.New("unknown priority \"urgentish\"")
	err := NewVocabularyError("vocab/cardio.toml", underlying).WithEntry("chest pain")

	if err.Type != ErrorTypeVocabulary {
		t.Errorf("Expected Type to be ErrorTypeVocabulary, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `vocabulary load failed for vocab/cardio.toml (entry "chest pain"): unknown priority "urgentish"`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	inline := NewVocabularyError("", underlying)
	if !strings.Contains(inline.Error(), "<inline>") {
		t.Errorf("Expected inline source marker, got %q", inline.Error())
	}
}

func TestMultiError(t *testing.T) {
	first := errors.New("first")
	second := NewVocabularyError("b.yaml", errors.New("second"))

	err := NewMultiError([]error{nil, first, nil, second})
	if len(err.Errors) != 2 {
		t.Fatalf("Expected nil errors to be filtered, got %d errors", len(err.Errors))
	}

	if !errors.Is(err, first) {
		t.Errorf("Expected errors.Is to find first error")
	}

	var vocabErr *VocabularyError
	if !errors.As(err, &vocabErr) {
		t.Errorf("Expected errors.As to find the vocabulary error")
	}

	if !strings.HasPrefix(err.Error(), "2 errors:") {
		t.Errorf("Unexpected message %q", err.Error())
	}

	single := NewMultiError([]error{first})
	if single.Error() != "first" {
		t.Errorf("Expected single error message to pass through, got %q", single.Error())
	}

	if NewMultiError(nil).ErrorOrNil() != nil {
		t.Errorf("Expected ErrorOrNil to return nil for empty MultiError")
	}
	if err.ErrorOrNil() == nil {
		t.Errorf("Expected ErrorOrNil to return the error when populated")
	}
}
