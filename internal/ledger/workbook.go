package ledger

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook opens an xlsx ledger file and returns the named sheet as a raw
// grid. With an empty sheetName the last sheet wins, which in a day-end
// workbook is the current period.
func LoadWorkbook(path, sheetName string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open ledger workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheetName == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return Sheet{}, fmt.Errorf("ledger workbook %s has no sheets", path)
		}
		sheetName = list[len(list)-1]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return Sheet{}, fmt.Errorf("read ledger sheet %q from %s: %w", sheetName, path, err)
	}

	return Sheet{Name: sheetName, Rows: rows}, nil
}
