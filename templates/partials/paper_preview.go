package partials

import (
	"bytes"
	"context"
	"io"

	"examination_app_go/models"
	"examination_app_go/services"
	"examination_app_go/templates/components"

	"github.com/a-h/templ"
)

const paperStyles = `
    @page { margin: 0.5in; }
    body { font-family: "Times New Roman", Times, serif; font-size: 12pt; line-height: 1.5; color: #000; }
    #print-content { margin: 0 auto; max-width: 100%; }
    .paper-header { text-align: center; margin-bottom: 18pt; }
    .paper-header h1 { font-size: 16pt; font-weight: bold; margin: 0 0 6pt; }
    .paper-header h2 { font-size: 13pt; font-weight: bold; margin: 0 0 6pt; }
    .paper-meta { display: flex; flex-wrap: wrap; justify-content: space-between; border-bottom: 1px solid #000; padding-bottom: 6pt; }
    .paper-meta span { margin-right: 12pt; }
    .paper-section h3 { font-size: 12pt; font-weight: bold; text-align: center; margin: 18pt 0 6pt; }
    .paper-question { display: flex; margin-bottom: 8pt; }
    .paper-question .number { width: 32pt; font-weight: bold; }
    .paper-question .or { text-align: center; font-weight: bold; margin: 4pt 0; }
    .paper-exports { margin-top: 24pt; font-family: sans-serif; font-size: 10pt; }
    @media print { .paper-exports { display: none; } }
`

// PaperPreview renders the printable body of a paper inside #print-content
func PaperPreview(p services.PaperPreview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div id="print-content" style="width: ` + paperWidth(services.DefaultPDFOptions().PageSize) + `">`)

		w.raw(`<div class="paper-header"><h1>`)
		w.text(p.ExaminationName)
		w.raw(`</h1><h2>`)
		w.text(p.SubjectLine())
		w.raw(`</h2><div class="paper-meta">`)
		metaLine(w, "Branch", p.Branch)
		metaLine(w, "Semester", p.Semester)
		metaLine(w, "Paper Code", p.PaperCode)
		metaLine(w, "Date", p.Date)
		for _, extra := range p.Extra {
			metaLine(w, extra.Label, extra.Value)
		}
		w.raw(`</div></div>`)

		for _, section := range p.Sections {
			w.raw(`<div class="paper-section"><h3>`)
			w.textf("Section %s", section.Label)
			w.raw(`</h3>`)
			for _, q := range section.Questions {
				w.raw(`<div class="paper-question"><span class="number">`)
				w.textf("%d.", q.Number)
				w.raw(`</span><div class="text">`)
				if q.HasOr {
					w.raw(`<div class="alt-a">(a) `)
					w.text(q.TextA)
					w.raw(`</div><div class="or">OR</div><div class="alt-b">(b) `)
					w.text(q.TextB)
					w.raw(`</div>`)
				} else {
					w.text(q.Text)
				}
				w.raw(`</div></div>`)
			}
			w.raw(`</div>`)
		}

		w.raw(`</div>`)
		return w.err
	})
}

func metaLine(w *writer, label, value string) {
	if value == "" {
		return
	}
	w.raw(`<span><strong>`)
	w.text(label)
	w.raw(`:</strong> `)
	w.text(value)
	w.raw(`</span>`)
}

// PaperDocument wraps the preview in a standalone HTML document with print styles
func PaperDocument(p services.PaperPreview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<title>")
		w.text(p.PaperName)
		w.raw("</title>\n<style>" + paperStyles + "</style>\n</head>\n<body>\n")
		if w.err != nil {
			return w.err
		}
		if err := PaperPreview(p).Render(ctx, out); err != nil {
			return err
		}
		w.raw("\n</body>\n</html>")
		return w.err
	})
}

// PaperPreviewPage is the browser preview: the document plus the paper's exports
func PaperPreviewPage(p services.PaperPreview, exports []models.ExportJob) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<title>")
		w.text(p.PaperName)
		w.raw("</title>\n<style>" + paperStyles + "</style>\n</head>\n<body>\n")
		if w.err != nil {
			return w.err
		}
		if err := PaperPreview(p).Render(ctx, out); err != nil {
			return err
		}

		w.raw(`<div class="paper-exports"><ul>`)
		for _, job := range exports {
			w.raw(`<li>`)
			w.text(job.CreatedAt.Format("2006-01-02 15:04"))
			w.raw(` - `)
			w.text(job.Status)
			if job.Status == models.ExportStatusSucceeded && job.URL != "" {
				w.raw(` <a href="`)
				w.text(job.URL)
				w.raw(`">`)
				w.textf("%s (%s)", job.Format, formatFileSize(job.FileSize))
				w.raw(`</a>`)
			}
			w.raw(`</li>`)
		}
		w.raw(`</ul></div>`)
		w.raw(`<script type="application/json" id="paper-data">`)
		w.raw(components.ScriptJSON(p))
		w.raw("</script>\n</body>\n</html>")
		return w.err
	})
}

// RenderPaperDocument renders PaperDocument to a string for headless export
func RenderPaperDocument(ctx context.Context, p services.PaperPreview) (string, error) {
	var buf bytes.Buffer
	if err := PaperDocument(p).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
