package object

import (
	"bytes"
	"fmt"
	"sandpy/internal/util"
)

// RenderError formats an execution error with the offending source lines.
func RenderError(src string, err *ExecutionError) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s: %s\n", err.Kind, err.Message)

	if err.Pos >= 0 {
		l, c := util.GetLineAndColumn(src, err.Pos)
		buf.WriteString("\n")
		buf.WriteString(util.GetContextLines(src, l, c, err.Kind.String()))
		buf.WriteString("\n")
	}

	return buf.String()
}
