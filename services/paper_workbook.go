package services

import (
	"bytes"
	"context"
	"fmt"

	"examination_app_go/models"
	"examination_app_go/services/i18n"

	"github.com/xuri/excelize/v2"
)

// BuildPaperWorkbook renders a paper as an xlsx file with one sheet: header
// rows first, then one row per question text. OR questions take two rows.
func BuildPaperWorkbook(ctx context.Context, p models.Paper) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.T(ctx, "workbook.sheet")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})

	preview := BuildPaperPreview(p)
	row := 1
	setRow := func(values ...interface{}) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	f.SetCellValue(sheet, "A1", p.PaperName)
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	row = 3

	setRow(i18n.T(ctx, "workbook.field"), i18n.T(ctx, "workbook.value"))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row-1), fmt.Sprintf("B%d", row-1), boldStyle)
	setRow(i18n.T(ctx, "workbook.paper_name"), p.PaperName)
	setRow(i18n.T(ctx, "workbook.created_at"), preview.Date)
	for _, field := range models.MandatoryFields() {
		setRow(field.Label, p.TopSection[field.Key])
	}
	for _, extra := range preview.Extra {
		setRow(extra.Label, extra.Value)
	}

	row++
	setRow(i18n.T(ctx, "workbook.section"), i18n.T(ctx, "workbook.number"), i18n.T(ctx, "workbook.question"))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row-1), fmt.Sprintf("C%d", row-1), boldStyle)
	for _, section := range preview.Sections {
		for _, q := range section.Questions {
			if q.HasOr {
				setRow(section.Label, fmt.Sprintf("%d%s", q.Number, i18n.T(ctx, "workbook.option_a")), q.TextA)
				setRow(section.Label, fmt.Sprintf("%d%s", q.Number, i18n.T(ctx, "workbook.option_b")), q.TextB)
				continue
			}
			setRow(section.Label, q.Number, q.Text)
		}
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// WorkbookFileName is the download name of a paper workbook
func WorkbookFileName(p models.Paper) string {
	return ExportBaseName(p.PaperName) + ".xlsx"
}
