package main

import (
	"fmt"
	"io"
	"strings"

	"tmc/internal/course"
)

const resultWidth = 80

// printSubmission writes the graded outcome. Failed tests are rendered as
// markdown so long assertion messages wrap.
func printSubmission(w io.Writer, res *course.SubmissionResult, format string) {
	failed := res.Failed()
	total := len(res.TestCases)

	switch {
	case res.Status == course.StatusError:
		_, _ = fmt.Fprintln(w, errorMsg("Submission could not be graded"))
	case res.AllTestsPassed:
		_, _ = fmt.Fprintln(w, successMsg("All tests passed (%d/%d)", total, total))
	default:
		_, _ = fmt.Fprintln(w, errorMsg("%d of %d tests failed", len(failed), total))
	}

	if len(res.Points) > 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Points: ")+strings.Join(res.Points, ", "))
	}

	if md := failureMarkdown(res, failed); md != "" {
		render := buildMarkdownRenderer(format, resultWidth)
		_, _ = fmt.Fprintln(w, render(md))
	}

	if res.ShowURL != "" {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("View: "+res.ShowURL))
	}
}

func failureMarkdown(res *course.SubmissionResult, failed []course.TestCase) string {
	var b strings.Builder
	if res.Error != "" {
		b.WriteString("## Error\n\n```\n")
		b.WriteString(strings.TrimSpace(res.Error))
		b.WriteString("\n```\n\n")
	}
	if len(failed) > 0 {
		b.WriteString("## Failed tests\n\n")
		for _, tc := range failed {
			fmt.Fprintf(&b, "- **%s**", tc.Name)
			if tc.Message != "" {
				fmt.Fprintf(&b, ": %s", tc.Message)
			}
			b.WriteString("\n")
			if tc.DetailedMessage != "" {
				b.WriteString("\n```\n")
				b.WriteString(strings.TrimSpace(tc.DetailedMessage))
				b.WriteString("\n```\n\n")
			}
		}
	}
	return b.String()
}
