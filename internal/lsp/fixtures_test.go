package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// sampleScript lines, 0-based:
//
//	0 scheme "Office" {
//	1   accent1 = "#4472C4"
//	2   accent2 = darken(scheme.accent1, 0.1)
//	3   hlink   = scheme.accent1
//	4   dk2     = scheme.dk1
//	5 }
//	6
//	7 scheme {
//	8   folHlink = "#954F72"
//	9 }
const sampleScript = `scheme "Office" {
  accent1 = "#4472C4"
  accent2 = darken(scheme.accent1, 0.1)
  hlink   = scheme.accent1
  dk2     = scheme.dk1
}

scheme {
  folHlink = "#954F72"
}
`

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func countSeverity(result *AnalysisResult, sev protocol.DiagnosticSeverity) int {
	n := 0
	for _, d := range result.Diagnostics {
		if d.Severity != nil && *d.Severity == sev {
			n++
		}
	}
	return n
}

func mustAnalyze(t *testing.T, content string) *AnalysisResult {
	t.Helper()
	result := Analyze("test.ppal", content)
	if result == nil {
		t.Fatal("Analyze() returned nil")
	}
	return result
}
