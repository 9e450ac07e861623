package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/communityhub/goldledger/internal/domain"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rosterHeaders = []string{"Member ID", "Name", "Lot ID", "Paid", "Payment Date", "Winner"}

// FileName is the attachment name of a bucket's roster, e.g.
// payments_cycle3_2024-05.xlsx.
func FileName(md domain.MonthlyData) string {
	return fmt.Sprintf("payments_cycle%d_%04d-%02d.xlsx", md.CycleID, md.Year, md.Month)
}

// PaymentRoster renders one row per payment, ordered as given, flagging the
// lots that won the bucket.
func PaymentRoster(roster domain.PaymentRoster) (*excelize.File, error) {
	sheet := fmt.Sprintf("%04d-%02d", roster.MonthlyData.Year, roster.MonthlyData.Month)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.SetSheetName -> %w", err)
	}
	if err := writeRoster(f, sheet, roster); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func writeRoster(f *excelize.File, sheet string, roster domain.PaymentRoster) error {
	for i, header := range rosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("f.SetCellValue -> %w", err)
		}
	}

	won := make(map[uint]struct{}, len(roster.Winners))
	for _, w := range roster.Winners {
		won[w.LotID] = struct{}{}
	}

	for i, p := range roster.Payments {
		var memberID, name string
		if p.Lot != nil && p.Lot.User != nil {
			memberID = p.Lot.User.MemberID
			name = p.Lot.User.Name
		}
		_, isWinner := won[p.LotID]

		values := []interface{}{memberID, name, p.LotID, yesNo(p.IsPaid), "", yesNo(isWinner)}
		if p.PaymentDate != nil {
			values[4] = p.PaymentDate.Format("2006-01-02")
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
