package main

import (
	"collabSheet/contracts"
	"strconv"
)

const RowNumberField = "rowNum"

type ColumnDef struct {
	HeaderName string `json:"headerName"`
	Field      string `json:"field"`
	Editable   bool   `json:"editable"`
	Pinned     string `json:"pinned,omitempty"`
}

type RowData map[string]any

func CellId(column string, row int) string {
	return column + strconv.Itoa(row)
}

// NewInitialState builds every address of the grid with an empty, never written record
func NewInitialState(grid GridConfig) contracts.SpreadsheetState {
	state := make(contracts.SpreadsheetState, len(grid.Columns)*grid.Rows)
	for _, column := range grid.Columns {
		for row := 1; row <= grid.Rows; row++ {
			state[CellId(column, row)] = contracts.CellData{ComputedValue: contracts.TextValue("")}
		}
	}

	return state
}

func BuildColumnDefs(grid GridConfig) []ColumnDef {
	defs := make([]ColumnDef, 0, len(grid.Columns)+1)
	defs = append(defs, ColumnDef{HeaderName: "#", Field: RowNumberField, Pinned: "left"})

	for _, column := range grid.Columns {
		defs = append(defs, ColumnDef{HeaderName: column, Field: column, Editable: true})
	}

	return defs
}

// BuildRowData derives one row per grid row holding the display value of each column
func BuildRowData(grid GridConfig, state contracts.SpreadsheetState) []RowData {
	rows := make([]RowData, 0, grid.Rows)

	for row := 1; row <= grid.Rows; row++ {
		rowData := RowData{
			RowNumberField: row,
			"id":           "row-" + strconv.Itoa(row-1),
		}

		for _, column := range grid.Columns {
			if cell, ok := state[CellId(column, row)]; ok {
				rowData[column] = cell.ComputedValue
			} else {
				rowData[column] = contracts.TextValue("")
			}
		}

		rows = append(rows, rowData)
	}

	return rows
}

// EditValue is what a cell shows once it enters edit mode: the source, not the display value
func EditValue(cell contracts.CellData) string {
	return cell.RawInput
}
