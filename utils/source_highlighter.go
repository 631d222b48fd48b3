package utils

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultTheme is the chroma style used for source excerpts.
const DefaultTheme = "dracula"

// LanguageForFile picks the chroma lexer for a shader source file.
func LanguageForFile(file string) string {
	switch strings.ToLower(path.Ext(file)) {
	case ".hlsl":
		return "hlsl"
	case ".h", ".inc":
		return "c"
	default:
		return "glsl"
	}
}

// HighlightSourceLine writes one source line to w, syntax highlighted when color is set.
// The line is always terminated with a newline.
func HighlightSourceLine(w io.Writer, line, language, theme string, color bool) error {
	line = strings.TrimRight(line, "\r\n")
	if !color {
		_, err := fmt.Fprintln(w, line)
		return err
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, line+"\n", language, "terminal256", theme); err != nil {
		return err
	}
	highlighted := buf.String()
	if !strings.HasSuffix(highlighted, "\n") {
		highlighted += "\n"
	}
	_, err := io.WriteString(w, highlighted)
	return err
}
