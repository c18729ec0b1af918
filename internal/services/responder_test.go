package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "hrflow/internal/errors"
	"hrflow/internal/models"
)

func TestComposeGroundedAnswer(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return "Interviews usually conclude within two weeks.\n\nHR Team", nil
	}}
	retriever := &stubRetriever{passages: []models.RetrievedPassage{
		{SourceID: "faq_chunk_2", Text: "Candidates hear back within two weeks of the final interview.", Score: 0.9},
	}}
	r := NewQueryResponder(gemini, retriever, 1, zap.NewNop())

	answer, err := r.Compose(context.Background(), inboundEmail("Timeline", "When will I hear back?"))
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if !answer.Grounded {
		t.Error("answer not marked grounded")
	}
	if answer.Body == "" {
		t.Error("answer body is empty")
	}
	if len(answer.Grounding) != 1 {
		t.Errorf("grounding = %d passages, want 1", len(answer.Grounding))
	}
}

func TestComposeNoPassagesMeansUngrounded(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		t.Fatal("model called without grounding passages")
		return "", nil
	}}
	r := NewQueryResponder(gemini, &stubRetriever{}, 1, zap.NewNop())

	answer, err := r.Compose(context.Background(), inboundEmail("Obscure", "Something the knowledge base does not cover"))
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if answer.Grounded {
		t.Error("answer marked grounded with no passages")
	}
}

func TestComposeGenerationFailureIsTyped(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return "", errors.New("deadline exceeded")
	}}
	retriever := &stubRetriever{passages: []models.RetrievedPassage{
		{SourceID: "faq_chunk_2", Text: "passage", Score: 0.9},
	}}
	r := NewQueryResponder(gemini, retriever, 1, zap.NewNop())

	answer, err := r.Compose(context.Background(), inboundEmail("Timeline", "When?"))
	if err == nil {
		t.Fatal("expected an error when composition fails")
	}
	if answer != nil {
		t.Errorf("answer = %+v, want none", answer)
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeGeneration) {
		t.Errorf("error type = %v, want a generation error", err)
	}
}

func TestComposeRetrievalErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("vector store unavailable")}
	r := NewQueryResponder(&stubGemini{}, retriever, 1, zap.NewNop())

	if _, err := r.Compose(context.Background(), inboundEmail("Timeline", "When?")); err == nil {
		t.Fatal("expected retrieval error to propagate")
	}
}
