package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mustuse/internal/diag"
	"mustuse/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgBlue)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем контекст строки с подчёркиванием ^~~~ по Span (если текст файла
// доступен), затем Notes в том же формате. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeader(w, fs, d.Primary, d.Severity.String(), d.Code.ID(), d.Message, opts)
		writeContext(w, fs, d.Primary)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				writeNote(w, fs, note, opts)
			}
		}
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, span source.Span, sev, code, msg string, opts PrettyOpts) {
	label := fmt.Sprintf("%s %s", sev, code)
	if opts.Color {
		label = severityColor(sev).Sprint(label)
	}
	fmt.Fprintf(w, "%s: %s: %s\n", formatLocation(fs, span, opts.PathMode), label, msg)
}

func writeNote(w io.Writer, fs *source.FileSet, note diag.Note, opts PrettyOpts) {
	label := "note"
	if opts.Color {
		label = noteColor.Sprint(label)
	}
	fmt.Fprintf(w, "  %s: %s: %s\n", formatLocation(fs, note.Span, opts.PathMode), label, note.Msg)
}

// writeContext prints the offending source line with a caret underline.
// Files registered without text (newline tables only) are skipped.
func writeContext(w io.Writer, fs *source.FileSet, span source.Span) {
	file := fs.Get(span.File)
	if file == nil || !file.HasContent() {
		return
	}
	start, end := fs.Resolve(span)
	line := file.GetLine(start.Line)
	if line == "" {
		return
	}

	fmt.Fprintf(w, "  %s\n", line)

	// Ширина отступа и подчёркивания считается в терминальных колонках,
	// чтобы табы и широкие руны не ломали позицию каретки.
	prefix := line[:min(int(start.Col-1), len(line))]
	pad := runewidth.StringWidth(prefix)

	underlineLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		marked := line[min(int(start.Col-1), len(line)):min(int(end.Col-1), len(line))]
		underlineLen = max(runewidth.StringWidth(marked), 1)
	}

	fmt.Fprintf(w, "  %s^%s\n", strings.Repeat(" ", pad), strings.Repeat("~", underlineLen-1))
}

func formatLocation(fs *source.FileSet, span source.Span, mode PathMode) string {
	file := fs.Get(span.File)
	if file == nil {
		return span.String()
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.FormatPath(pathModeName(mode), fs.BaseDir()), start.Line, start.Col)
}

func pathModeName(mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	}
	return "auto"
}

func severityColor(sev string) *color.Color {
	switch sev {
	case "ERROR":
		return errorColor
	case "WARNING":
		return warningColor
	}
	return infoColor
}
