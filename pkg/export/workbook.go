package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/stats"
)

// Workbook sheet names, in tab order.
const (
	SheetSummary    = "Summary"
	SheetRounds     = "Rounds"
	SheetCategories = "Categories"
	SheetTimeline   = "Timeline"
)

// FightInfo is the header block of the summary sheet.
type FightInfo struct {
	Athlete  string
	Opponent string
	Date     string
	Location string
	Video    string
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
}

// WriteWorkbook renders the report as an xlsx workbook into w.
func WriteWorkbook(w io.Writer, info FightInfo, rep stats.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{f: f, headerStyle: headerStyle}

	for _, name := range []string{SheetSummary, SheetRounds, SheetCategories, SheetTimeline} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if err := sw.summary(info, rep); err != nil {
		return err
	}
	if err := sw.rounds(rep); err != nil {
		return err
	}
	if err := sw.categories(rep); err != nil {
		return err
	}
	if err := sw.timeline(rep); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// table writes a header row and data rows starting at A1 and sizes the columns.
func (sw *sheetWriter) table(sheet string, headers []string, widths []float64, rows [][]any) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := sw.f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := sw.f.SetCellStyle(sheet, cell, cell, sw.headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+2, err)
		}
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := sw.f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func (sw *sheetWriter) summary(info FightInfo, rep stats.Report) error {
	rows := [][]any{
		{"Athlete", info.Athlete},
		{"Opponent", info.Opponent},
		{"Date", info.Date},
		{"Location", info.Location},
		{"Video", info.Video},
		{"Mode", rep.Mode},
		{"Duration", timeutil.FormatClock(rep.Duration)},
		{"Total strikes", rep.TotalStrikes},
		{"Landed strikes", rep.LandedStrikes},
		{"Correctness rate", rep.CorrectnessRate},
		{"Opponent strikes", rep.Opponent.Total},
		{"Opponent landed", rep.Opponent.Landed},
		{"Unassigned strikes", rep.Unassigned},
		{"Hits received", rep.HitsReceived},
		{"Defenses successful", rep.Defense.Successful},
		{"Defenses failed", rep.Defense.Failed},
		{"Attack time (s)", rep.AttackTime},
		{"Defense time (s)", rep.DefenseTime},
		{"Attack/defense ratio", rep.AttackDefenseRatio},
		{"Style", string(rep.Style)},
	}
	return sw.table(SheetSummary, []string{"Metric", "Value"}, []float64{24, 40}, rows)
}

func (sw *sheetWriter) rounds(rep stats.Report) error {
	rows := make([][]any, 0, len(rep.Rounds))
	for _, r := range rep.Rounds {
		label := any(r.Number)
		if r.Number == stats.UnknownRound {
			label = "unknown"
		}
		rows = append(rows, []any{
			label, r.Duration,
			r.Athlete.Total, r.Athlete.Landed, r.Athlete.Correct, r.Athlete.CorrectnessRate,
			r.Opponent.Total, r.Opponent.Landed,
			r.HitsReceived, r.Defense.Successful, r.Defense.Failed,
			r.AttackTime, r.DefenseTime, string(r.Style),
		})
	}
	headers := []string{
		"Round", "Duration (s)",
		"Strikes", "Landed", "Correct", "Correctness",
		"Opp strikes", "Opp landed",
		"Hits received", "Defenses ok", "Defenses failed",
		"Attack (s)", "Defense (s)", "Style",
	}
	return sw.table(SheetRounds, headers, []float64{10, 12}, rows)
}

func (sw *sheetWriter) categories(rep stats.Report) error {
	rows := make([][]any, 0, len(rep.Categories))
	for _, c := range rep.Categories {
		rows = append(rows, []any{string(c.Category), c.Total, c.Landed, c.Percentage})
	}
	return sw.table(SheetCategories, []string{"Category", "Total", "Landed", "Share"}, []float64{14}, rows)
}

func (sw *sheetWriter) timeline(rep stats.Report) error {
	rows := make([][]any, 0, len(rep.Timeline))
	for _, b := range rep.Timeline {
		rows = append(rows, []any{
			timeutil.FormatClock(b.Start), timeutil.FormatClock(b.End),
			b.Strikes, b.AthleteStrikes, b.OpponentStrikes, b.Attacks, b.Defenses,
		})
	}
	headers := []string{"From", "To", "Strikes", "Athlete", "Opponent", "Attacks", "Defenses"}
	return sw.table(SheetTimeline, headers, []float64{12, 12}, rows)
}
