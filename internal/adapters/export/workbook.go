// Package export renders collections as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"arena/internal/domain/calendar"
	"arena/internal/domain/invoice"
	"arena/internal/domain/member"
	"arena/internal/domain/payment"
)

// ContentType is the media type of every workbook this package writes.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is a single-sheet table: a header row followed by data rows.
type Sheet struct {
	Name     string
	Filename string
	Header   []string
	Rows     [][]any
}

// Write streams sheet to w as an XLSX workbook. An empty Rows slice still
// yields a valid workbook holding only the header.
// PRE: sheet.Name is non-empty
// POST: w receives a complete workbook or an error is returned
func Write(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet.Name)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if n := len(sheet.Header); n > 0 {
		if err := sw.SetColWidth(1, n, 18); err != nil {
			return err
		}
	}

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

// instant renders an optional instant in the civil zone; zero is blank.
func instant(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

// Members lays out members newest first as given.
func Members(ms []member.Member) Sheet {
	s := Sheet{
		Name:     "Members",
		Filename: "members.xlsx",
		Header:   []string{"id", "name", "phone", "email", "membership_type", "batch", "status", "last_attendance_date"},
		Rows:     make([][]any, 0, len(ms)),
	}
	for _, m := range ms {
		last := ""
		if m.LastAttendance != nil {
			last = m.LastAttendance.String()
		}
		s.Rows = append(s.Rows, []any{m.ID, m.Name, m.Phone, m.Email, m.MembershipType, m.Batch, m.Status, last})
	}
	return s
}

// Payments lays out payments with due dates as calendar dates.
func Payments(ps []payment.Payment, loc *time.Location) Sheet {
	s := Sheet{
		Name:     "Payments",
		Filename: "payments.xlsx",
		Header:   []string{"id", "member_id", "member_name", "amount", "fee_type", "period", "status", "due_date", "paid_at"},
		Rows:     make([][]any, 0, len(ps)),
	}
	for _, p := range ps {
		due := calendar.DateOf(p.DueDate.UTC()).String()
		s.Rows = append(s.Rows, []any{p.ID, p.MemberID, p.MemberName, p.Amount, p.FeeType, p.Period, p.Status, due, instant(p.PaidAt, loc)})
	}
	return s
}

// Billing lays out invoices.
func Billing(invs []invoice.Invoice, loc *time.Location) Sheet {
	s := Sheet{
		Name:     "Billing",
		Filename: "billing_history.xlsx",
		Header:   []string{"id", "member_id", "member_name", "total", "status", "issued_at", "paid_at"},
		Rows:     make([][]any, 0, len(invs)),
	}
	for _, inv := range invs {
		s.Rows = append(s.Rows, []any{inv.ID, inv.MemberID, inv.MemberName, inv.Total, inv.Status, instant(inv.IssuedAt, loc), instant(inv.PaidAt, loc)})
	}
	return s
}
