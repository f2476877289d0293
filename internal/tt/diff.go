package tt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ejhollis/reagent"
)

// RenderTranscript renders a transcript one message per line, in a stable
// textual form suitable for diffing.
func RenderTranscript(transcript []reagent.Message) string {
	var sb strings.Builder
	for _, msg := range transcript {
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		switch {
		case len(msg.ToolCalls) > 0:
			names := make([]string, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				names = append(names, call.Name)
			}
			fmt.Fprintf(&sb, "tool_calls(%s)", strings.Join(names, ", "))
		case msg.ToolResult != nil:
			fmt.Fprintf(&sb, "result(%s, error=%t): %s",
				msg.ToolResult.Name, msg.ToolResult.IsError, msg.Content)
		default:
			sb.WriteString(msg.Content)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// AssertTranscript fails the test with a unified diff when the rendered
// transcripts differ.
func AssertTranscript(t *testing.T, want, got []reagent.Message) {
	t.Helper()
	wantText := RenderTranscript(want)
	gotText := RenderTranscript(got)
	if wantText == gotText {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(wantText),
		B:        difflib.SplitLines(gotText),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("transcript mismatch (diff failed: %v)\nwant:\n%s\ngot:\n%s", err, wantText, gotText)
	}
	t.Fatalf("transcript mismatch:\n%s", diff)
}
