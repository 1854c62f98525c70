// Package export — выгрузки в Excel.
package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"educrm/internal/db"
)

// TuitionReport собирает лист оплат группы: по строке на enrollment
// каждого студента, с контрактной суммой, скидкой и фактически
// внесёнными платежами.
func TuitionReport(ctx context.Context, database db.Querier, groupID int64) (*excelize.File, error) {
	group, err := db.GetGroupByID(ctx, database, groupID)
	if err != nil {
		return nil, err
	}

	header := []string{"Студент", "Телефон", "Начало контракта", "Конец контракта",
		"Сумма", "Скидка", "Оплачено", "Остаток", "Статус"}
	rows := make([][]string, 0, len(group.Students))

	for _, sid := range group.Students {
		st, err := db.GetStudentByID(ctx, database, sid)
		if err != nil {
			return nil, fmt.Errorf("студент %d: %w", sid, err)
		}
		for _, e := range st.Groups {
			if e.GroupID != groupID {
				continue
			}
			paid := 0.0
			for _, p := range e.Paids {
				if p.Confirmed {
					paid += p.Payment
				}
			}
			due := e.TotalAmount - e.Discount
			rows = append(rows, []string{
				st.FullName,
				st.Phone,
				fmtDate(e.ContractStartDate),
				fmtDate(e.ContractEndDate),
				fmtMoney(e.TotalAmount),
				fmtMoney(e.Discount),
				fmtMoney(paid),
				fmtMoney(due - paid),
				string(e.Status),
			})
		}
	}

	return buildSheet(group.Name, header, rows)
}

func buildSheet(title string, header []string, rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", title); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(title, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(title, "A1", end, bold)
	_ = f.AutoFilter(title, "A1:"+end, nil)

	for r, row := range rows {
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(title, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// эвристическая ширина: по длине заголовка и первых строк
	for c := 1; c <= len(header); c++ {
		maxim := len(header[c-1])
		for r := 0; r < minim(50, len(rows)); r++ {
			if l := len(rows[r][c-1]); l > maxim {
				maxim = l
			}
		}
		w := float64(maxim) * 0.9
		if w < 12 {
			w = 12
		}
		if w > 42 {
			w = 42
		}
		col := colName(c)
		_ = f.SetColWidth(title, col, col, w)
	}
	return f, nil
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}

func fmtMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// colName: 1 -> A, 27 -> AA
func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
