package course

import (
	"context"
	"errors"
	"sync"

	"tmc/internal/progress"
)

// ErrMockNotImplemented is returned when a MockClient method lacks an override.
var ErrMockNotImplemented = errors.New("course.MockClient: method not implemented")

// MockClient is a test double for Client.
type MockClient struct {
	SubmitFn   func(context.Context, Exercise, progress.Reporter) (*SubmissionResult, error)
	PasteFn    func(context.Context, Exercise, string, progress.Reporter) (*PasteResult, error)
	DownloadFn func(context.Context, []int, string, progress.Reporter) (*DownloadResult, error)

	mu                sync.Mutex
	SubmitCallCount   int
	PasteCallCount    int
	DownloadCallCount int
}

// Submit implements Client.
func (m *MockClient) Submit(ctx context.Context, ex Exercise, rep progress.Reporter) (*SubmissionResult, error) {
	m.mu.Lock()
	m.SubmitCallCount++
	m.mu.Unlock()
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, ex, rep)
	}
	return nil, ErrMockNotImplemented
}

// Paste implements Client.
func (m *MockClient) Paste(ctx context.Context, ex Exercise, message string, rep progress.Reporter) (*PasteResult, error) {
	m.mu.Lock()
	m.PasteCallCount++
	m.mu.Unlock()
	if m.PasteFn != nil {
		return m.PasteFn(ctx, ex, message, rep)
	}
	return nil, ErrMockNotImplemented
}

// Download implements Client.
func (m *MockClient) Download(ctx context.Context, ids []int, dir string, rep progress.Reporter) (*DownloadResult, error) {
	m.mu.Lock()
	m.DownloadCallCount++
	m.mu.Unlock()
	if m.DownloadFn != nil {
		return m.DownloadFn(ctx, ids, dir, rep)
	}
	return nil, ErrMockNotImplemented
}
