package letter

import (
	"context"
	"errors"
	"sync"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/genai"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// fakeCompleter records prompts and returns a canned reply.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	prompts  []genai.Prompt
	settings []genai.Settings
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, p genai.Prompt, s genai.Settings) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, p)
	f.settings = append(f.settings, s)
	block, started := f.block, f.started
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return f.reply, f.err
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSaver records saved documents.
type fakeSaver struct {
	mu   sync.Mutex
	docs []models.Document
	err  error
}

func (f *fakeSaver) SaveDocument(ctx context.Context, doc models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

var errBoom = errors.New("boom")
