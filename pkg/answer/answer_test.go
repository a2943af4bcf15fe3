package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/retrieval"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeGenerator) GenerateCompletion(_ context.Context, _ string, _ ...ai.GenerateOption) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeGenerator) GenerateChat(ctx context.Context, chat []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return f.GenerateCompletion(ctx, "", opts...)
}

func newSynthesizer(t *testing.T, gen ai.GenerationClient, budget int) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(gen, budget)
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}
	return s
}

func someResults() retrieval.Retrieval {
	return retrieval.Retrieval{
		Method: retrieval.MethodSemantic,
		Results: []index.Result{
			{Document: index.Document{ID: "doc1", Text: "Paracetamol treats fever."}, Score: 0.8},
			{Document: index.Document{ID: "doc2", Text: "Ibuprofen relieves headache."}, Score: 0.6},
		},
	}
}

func TestSynthesizeSuccess(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Paracetamol is commonly used for fever."}}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got.Fallback {
		t.Fatal("expected model answer, got fallback")
	}
	if got.Text != "Paracetamol is commonly used for fever." {
		t.Fatalf("unexpected answer: %q", got.Text)
	}
	if got.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", got.Confidence)
	}
	if gen.calls != 1 {
		t.Fatalf("expected 1 generation call, got %d", gen.calls)
	}
}

func TestSynthesizeNoResults(t *testing.T) {
	gen := &fakeGenerator{}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "anything", retrieval.Retrieval{Method: retrieval.MethodKeyword})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", got.Confidence)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation calls, got %d", gen.calls)
	}
}

func TestSynthesizeTransientRetriedOnce(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{&ai.StatusError{StatusCode: 503, Message: "overloaded"}, nil},
		responses: []string{"", "Fever responds to paracetamol."},
	}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got.Fallback {
		t.Fatal("expected retried answer, got fallback")
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 generation calls, got %d", gen.calls)
	}
}

func TestSynthesizeEmptyGenerationNotRetried(t *testing.T) {
	gen := &fakeGenerator{errs: []error{ai.ErrEmptyGeneration}}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !got.Fallback {
		t.Fatal("expected verbatim fallback")
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly 1 generation call, got %d", gen.calls)
	}
	if got.Text != "Paracetamol treats fever." {
		t.Fatalf("expected top passage verbatim, got %q", got.Text)
	}
	if got.Confidence != 0.4 {
		t.Fatalf("expected halved confidence 0.4, got %v", got.Confidence)
	}
}

func TestSynthesizeFallbackIsTopPassageOnly(t *testing.T) {
	gen := &fakeGenerator{errs: []error{ai.ErrEmptyGeneration}}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !got.Fallback {
		t.Fatal("expected verbatim fallback")
	}
	// Exactly the highest-scored passage, never the joined context blob.
	if got.Text != "Paracetamol treats fever." {
		t.Fatalf("expected only the top passage, got %q", got.Text)
	}
}

func TestSynthesizePersistentTransientFallsBack(t *testing.T) {
	failure := &ai.StatusError{StatusCode: 500, Message: "broken"}
	gen := &fakeGenerator{errs: []error{failure, failure, failure}}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !got.Fallback {
		t.Fatal("expected verbatim fallback")
	}
	if gen.calls != 2 {
		t.Fatalf("expected retry once then stop, got %d calls", gen.calls)
	}
}

func TestSynthesizeTimeoutRetriedOnce(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{fmt.Errorf("model call: %w", context.DeadlineExceeded), nil},
		responses: []string{"", "Fever responds to paracetamol."},
	}
	s := newSynthesizer(t, gen, 0)

	got, err := s.Synthesize(context.Background(), "what treats fever?", someResults())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if got.Fallback {
		t.Fatal("expected retried answer, got fallback")
	}
	if gen.calls != 2 {
		t.Fatalf("expected call-local timeout retried once, got %d calls", gen.calls)
	}
}

func TestSynthesizeCancelledContext(t *testing.T) {
	gen := &fakeGenerator{errs: []error{context.Canceled}}
	s := newSynthesizer(t, gen, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Synthesize(ctx, "q", someResults()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildPromptBudget(t *testing.T) {
	s := newSynthesizer(t, &fakeGenerator{}, 40)

	long := strings.Repeat("inflammation analgesic dosage ", 30)
	prompt := s.buildPrompt("what treats fever?", []index.Result{
		{Document: index.Document{ID: "doc1", Text: "Paracetamol treats fever."}},
		{Document: index.Document{ID: "doc2", Text: long}},
	})

	if !strings.Contains(prompt, "Paracetamol treats fever.") {
		t.Fatal("expected first passage always included")
	}
	if strings.Contains(prompt, "inflammation analgesic dosage") {
		t.Fatal("expected over-budget passage dropped")
	}
	if !strings.Contains(prompt, "Question: what treats fever?") {
		t.Fatal("expected question in prompt")
	}
}
