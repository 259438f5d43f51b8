// stub_analyzer.go - Stub analysis backend for testing
package testutil

import (
	"archive/zip"
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/model-validator/backend/internal/llm"
)

// AnalyzeCall records one invocation of the stub analyzer.
type AnalyzeCall struct {
	Code string
	Meta llm.RequestContext
}

// StubAnalyzer implements the pipeline's Analyzer interface with a canned
// reply. Safe for concurrent use; per-file analyses may run in parallel.
type StubAnalyzer struct {
	mu    sync.Mutex
	Reply string
	// ReplyFunc, when set, takes precedence over Reply.
	ReplyFunc func(code string) string
	calls     []AnalyzeCall
}

func (s *StubAnalyzer) AnalyzeCode(_ context.Context, code string, meta llm.RequestContext) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, AnalyzeCall{Code: code, Meta: meta})
	if s.ReplyFunc != nil {
		return s.ReplyFunc(code)
	}
	return s.Reply
}

// Calls returns a copy of the recorded invocations.
func (s *StubAnalyzer) Calls() []AnalyzeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AnalyzeCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many analyses were requested.
func (s *StubAnalyzer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// BuildZip assembles an in-memory ZIP archive from entry name to content.
// Entries are written in the iteration order of the names slice so tests can
// rely on archive order.
func BuildZip(t *testing.T, names []string, contents map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(contents[name])); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}
