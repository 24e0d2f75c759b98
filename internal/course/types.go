package course

import (
	"context"
	"path/filepath"
	"strconv"

	"tmc/internal/progress"
)

// Stage counts per operation. Each operation reports exactly this many
// finished events on success.
const (
	// SubmitStages covers the upload and the wait for grading.
	SubmitStages = 2
	// DownloadStages covers fetching and extracting every requested exercise.
	DownloadStages = 1
	// PasteStages covers the upload of a paste.
	PasteStages = 1
)

// Submission status values returned by the server.
const (
	StatusProcessing = "processing"
	StatusOK         = "ok"
	StatusFail       = "fail"
	StatusError      = "error"
)

// Client is the set of tracked course operations.
type Client interface {
	Submit(ctx context.Context, ex Exercise, rep progress.Reporter) (*SubmissionResult, error)
	Paste(ctx context.Context, ex Exercise, message string, rep progress.Reporter) (*PasteResult, error)
	Download(ctx context.Context, ids []int, dir string, rep progress.Reporter) (*DownloadResult, error)
}

// Exercise identifies a local exercise directory and its server id.
type Exercise struct {
	ID   int
	Name string
	Path string
}

// Label returns a human readable name for messages.
func (e Exercise) Label() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Path != "" {
		return filepath.Base(e.Path)
	}
	return "exercise " + strconv.Itoa(e.ID)
}

// TestCase is a single graded test.
type TestCase struct {
	Name            string `json:"name"`
	Successful      bool   `json:"successful"`
	Message         string `json:"message"`
	DetailedMessage string `json:"detailed_message,omitempty"`
}

// SubmissionResult is the graded outcome of a submission.
type SubmissionResult struct {
	Status         string     `json:"status"`
	AllTestsPassed bool       `json:"all_tests_passed"`
	Points         []string   `json:"points"`
	TestCases      []TestCase `json:"test_cases"`
	Message        string     `json:"message"`
	Error          string     `json:"error,omitempty"`
	SandboxStatus  string     `json:"sandbox_status,omitempty"`

	SubmissionURL string `json:"-"`
	ShowURL       string `json:"-"`
}

// Failed returns the test cases that did not pass.
func (r *SubmissionResult) Failed() []TestCase {
	var failed []TestCase
	for _, tc := range r.TestCases {
		if !tc.Successful {
			failed = append(failed, tc)
		}
	}
	return failed
}

// PasteResult points at a created paste.
type PasteResult struct {
	PasteURL      string
	SubmissionURL string
}

// DownloadResult lists the directories exercises were extracted into, in
// request order.
type DownloadResult struct {
	Paths []string
}

type submissionCreated struct {
	SubmissionURL     string `json:"submission_url"`
	PasteURL          string `json:"paste_url"`
	ShowSubmissionURL string `json:"show_submission_url"`
}

func reporterOrDiscard(rep progress.Reporter) progress.Reporter {
	if rep == nil {
		return progress.Discard
	}
	return rep
}
