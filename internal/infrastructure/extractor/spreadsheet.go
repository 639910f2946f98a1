package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// Spreadsheet flattens an xlsx workbook into tab separated lines, one
// sheet after another, so cell contents are searchable and visible to
// workflow conditions.
type Spreadsheet struct{}

func (s *Spreadsheet) Extract(ctx context.Context, doc *domain.Document, data io.Reader) (string, error) {
	workbook, err := excelize.OpenReader(data)
	if err != nil {
		return "", fmt.Errorf("open workbook %q: %w", doc.Filename, err)
	}
	defer workbook.Close()

	var sb strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q of %q: %w", sheet, doc.Filename, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
