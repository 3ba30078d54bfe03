// Package excel imports and exports the skin catalog as a spreadsheet,
// the bulk-edit path for maintaining many skins at once.
package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hok11/hok-rank/internal/models"
)

const sheetName = "skins"

var headers = []string{"品质代码", "皮肤名称", "排名点数", "真实点数", "涨幅%", "真实价格", "在榜", "新品", "返场", "预设", "绝版", "头像路径"}

// Export writes the full catalog to path as an .xlsx workbook.
func Export(path string, skins []*models.Skin) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for i, s := range skins {
		row := i + 2
		values := []interface{}{
			s.Quality, s.Name,
			floatOrEmpty(s.Score), floatOrEmpty(s.RealScore),
			s.Growth, s.RealPrice,
			boolMark(s.OnLeaderboard), boolMark(s.IsNew), boolMark(s.IsRerun),
			boolMark(s.IsPreset), boolMark(s.IsDiscontinued),
			s.LocalImg,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// Import reads skins back from a workbook produced by Export. Rows with an
// empty name are skipped; malformed numbers fail the whole import.
func Import(path string) ([]*models.Skin, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("工作表 %s 为空", sheetName)
	}

	var skins []*models.Skin
	for i, row := range rows[1:] {
		if cell(row, 1) == "" {
			continue
		}
		skin := &models.Skin{
			Name:           cell(row, 1),
			OnLeaderboard:  cell(row, 6) == "是",
			IsNew:          cell(row, 7) == "是",
			IsRerun:        cell(row, 8) == "是",
			IsPreset:       cell(row, 9) == "是",
			IsDiscontinued: cell(row, 10) == "是",
			LocalImg:       cell(row, 11),
		}
		if skin.Quality, err = parseFloat(cell(row, 0)); err != nil {
			return nil, fmt.Errorf("第 %d 行品质代码: %w", i+2, err)
		}
		if skin.Score, err = parseOptFloat(cell(row, 2)); err != nil {
			return nil, fmt.Errorf("第 %d 行排名点数: %w", i+2, err)
		}
		if skin.RealScore, err = parseOptFloat(cell(row, 3)); err != nil {
			return nil, fmt.Errorf("第 %d 行真实点数: %w", i+2, err)
		}
		if skin.Growth, err = parseFloat(cell(row, 4)); err != nil {
			return nil, fmt.Errorf("第 %d 行涨幅: %w", i+2, err)
		}
		if skin.RealPrice, err = parseFloat(cell(row, 5)); err != nil {
			return nil, fmt.Errorf("第 %d 行真实价格: %w", i+2, err)
		}
		skins = append(skins, skin)
	}
	return skins, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func boolMark(b bool) string {
	if b {
		return "是"
	}
	return ""
}
