package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"examination_app_go/config"
	"examination_app_go/services"
	"examination_app_go/services/i18n"
	"examination_app_go/services/prompt"
	"examination_app_go/templates/partials"
)

const usage = `Usage: papergen <command> [flags]

Commands:
  templates              list stored templates
  papers [-search q]     list stored question papers
  new                    fill in a new question paper interactively
  edit <paper-id>        edit a stored question paper interactively
  preview <paper-id>     write the printable HTML document (-out file, default stdout)
  workbook <paper-id>    write the paper as an xlsx file (-out file)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	// Load configuration
	cfg := config.Load()
	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	ctx := context.Background()
	stores, err := services.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "templates":
		err = listTemplates(ctx, stores)
	case "papers":
		err = listPapers(ctx, stores, args)
	case "new":
		err = newPaper(ctx, stores, prompt.NewSurveyDriver())
	case "edit":
		err = editPaper(ctx, stores, prompt.NewSurveyDriver(), args)
	case "preview":
		err = writePreview(ctx, stores, args)
	case "workbook":
		err = writeWorkbook(ctx, stores, args)
	default:
		fmt.Print(usage)
		os.Exit(2)
	}

	if errors.Is(err, prompt.ErrAborted) {
		fmt.Println("Aborted, nothing was saved.")
		return
	}
	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func listTemplates(ctx context.Context, stores *services.Stores) error {
	templates, err := stores.Templates.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range templates {
		fmt.Printf("%s  %-30s  sections %v  questions %d\n", t.ID, t.TemplateName, t.QuestionSections.Sections, len(t.QuestionSections.Questions))
	}
	return nil
}

func listPapers(ctx context.Context, stores *services.Stores, args []string) error {
	fs := flag.NewFlagSet("papers", flag.ExitOnError)
	search := fs.String("search", "", "case-insensitive name filter")
	fs.Parse(args)

	papers, err := stores.Papers.Search(ctx, *search)
	if err != nil {
		return err
	}
	for _, p := range papers {
		fmt.Printf("%s  %-30s  %s\n", p.ID, p.PaperName, p.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func newPaper(ctx context.Context, stores *services.Stores, d prompt.Driver) error {
	templates, err := stores.Templates.List(ctx)
	if err != nil {
		return err
	}
	template, err := prompt.ChooseTemplate(ctx, d, templates)
	if err != nil {
		return err
	}
	return fillAndSubmit(ctx, stores, d, services.SelectTemplate(template))
}

func editPaper(ctx context.Context, stores *services.Stores, d prompt.Driver, args []string) error {
	if len(args) < 1 {
		return errors.New("paper id is required")
	}
	paper, err := stores.Papers.Get(ctx, args[0])
	if err != nil {
		return err
	}
	return fillAndSubmit(ctx, stores, d, services.DraftFromPaper(paper))
}

func fillAndSubmit(ctx context.Context, stores *services.Stores, d prompt.Driver, draft services.PaperDraft) error {
	draft, err := prompt.FillPaper(ctx, d, draft, stores.Catalog)
	if err != nil {
		return err
	}

	ok, err := d.Confirm(ctx, "Save question paper?", true)
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrAborted
	}

	paper, _, err := services.SubmitPaper(ctx, stores.Papers, draft, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Saved %q as %s\n", paper.PaperName, paper.ID)
	return nil
}

func writePreview(ctx context.Context, stores *services.Stores, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	out := fs.String("out", "", "output file (default stdout)")
	if len(args) < 1 {
		return errors.New("paper id is required")
	}
	fs.Parse(args[1:])

	paper, err := stores.Papers.Get(ctx, args[0])
	if err != nil {
		return err
	}
	html, err := partials.RenderPaperDocument(ctx, services.BuildPaperPreview(paper))
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = fmt.Println(html)
		return err
	}
	return os.WriteFile(*out, []byte(html), 0644)
}

func writeWorkbook(ctx context.Context, stores *services.Stores, args []string) error {
	fs := flag.NewFlagSet("workbook", flag.ExitOnError)
	out := fs.String("out", "", "output file (default <paper name>.xlsx)")
	if len(args) < 1 {
		return errors.New("paper id is required")
	}
	fs.Parse(args[1:])

	paper, err := stores.Papers.Get(ctx, args[0])
	if err != nil {
		return err
	}
	buf, err := services.BuildPaperWorkbook(ctx, paper)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = services.WorkbookFileName(paper)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
