package script

import (
	"regexp"

	"github.com/hashicorp/hcl/v2/hclwrite"
)

var (
	multipleBlankLines        = regexp.MustCompile(`\n{3,}`)
	blankLineAfterOpenBrace   = regexp.MustCompile(`\{\n\s*\n`)
	blankLineBeforeCloseBrace = regexp.MustCompile(`\n\s*\n(\s*\})`)
)

// Format rewrites a palette script in canonical HCL style and collapses
// stray blank lines. It works on partial or invalid input, so editors can
// call it while the user is still typing.
func Format(content string) string {
	out := string(hclwrite.Format([]byte(content)))
	out = multipleBlankLines.ReplaceAllString(out, "\n\n")
	out = blankLineAfterOpenBrace.ReplaceAllString(out, "{\n")
	return blankLineBeforeCloseBrace.ReplaceAllString(out, "\n${1}")
}
