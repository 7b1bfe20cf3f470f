package dashboard

import (
	"context"
	"fmt"
	"io"

	"bookkeeping-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	SheetTransactions  = "Transactions"
	SheetRelationships = "Relationships"
)

// ExportXLSX writes the summary of r as a workbook with one sheet per grouping.
func (s *Service) ExportXLSX(ctx context.Context, r Range, w io.Writer) error {
	sum, err := s.Summary(ctx, r)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetRelationships); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	rows := [][]any{
		{"From", sum.Range.Start.Format(models.DateLayout), "To", sum.Range.End.Format(models.DateLayout)},
		{"Transaction type", "Kind", "Count", "Total"},
	}
	for _, tt := range sum.TransactionTypes {
		rows = append(rows, []any{tt.Name, string(tt.Kind), tt.Count, tt.Total})
	}
	rows = append(rows, []any{"Total", "", "", sum.GrandTotal})
	if err := writeRows(f, SheetTransactions, rows); err != nil {
		return err
	}

	rows = [][]any{{"Relationship type", "Count"}}
	for _, rc := range sum.RelationshipTypes {
		rows = append(rows, []any{rc.Name, rc.Count})
	}
	if err := writeRows(f, SheetRelationships, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
