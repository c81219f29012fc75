package users

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"shiftplan/internal/apperr"
	"shiftplan/internal/models"
)

// Column order of an employee import sheet.
var importColumns = []string{"username", "password", "name", "email", "primary_shift", "secondary_shift", "hourly_rate"}

type ImportFailure struct {
	Row      int    `json:"row"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

type ImportResult struct {
	Created []string        `json:"created"`
	Failed  []ImportFailure `json:"failed"`
}

// ImportEmployees creates one employee per row of the first sheet. A header
// row starting with "username" is skipped. Rows fail independently.
func (s *Service) ImportEmployees(ctx context.Context, actor string, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Invalid("cannot read workbook: %s", err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Invalid("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Invalid("cannot read sheet %q: %s", sheets[0], err.Error())
	}

	res := &ImportResult{Created: []string{}, Failed: []ImportFailure{}}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), importColumns[0]) {
			continue
		}

		in, err := parseImportRow(row)
		if err == nil {
			_, err = s.Create(ctx, actor, in)
		}
		if err != nil {
			res.Failed = append(res.Failed, ImportFailure{Row: i + 1, Username: in.Username, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, in.Username)
	}
	return res, nil
}

func parseImportRow(row []string) (CreateInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	in := CreateInput{
		Username:     cell(0),
		Password:     cell(1),
		Name:         cell(2),
		Email:        cell(3),
		Role:         models.RoleEmployee,
		PrimaryShift: models.ShiftType(strings.ToLower(cell(4))),
	}
	if v := cell(5); v != "" && !strings.EqualFold(v, "none") {
		secondary := models.ShiftType(strings.ToLower(v))
		in.SecondaryShift = &secondary
	}
	if v := cell(6); v != "" {
		rate, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return in, fmt.Errorf("hourly rate %q is not a number", v)
		}
		in.HourlyRate = rate
	}
	return in, nil
}
