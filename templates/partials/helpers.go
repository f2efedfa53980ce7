package partials

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Helper function to format file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// paperWidth is the on-screen width of a page at 96dpi
func paperWidth(pageSize string) string {
	switch pageSize {
	case "A4":
		return "794px" // 210mm at 96dpi
	default:
		return "816px" // Letter and legal: 8.5" at 96dpi
	}
}

// writer collects the first write error so markup can be emitted in sequence
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) textf(format string, args ...interface{}) {
	w.text(fmt.Sprintf(format, args...))
}
