package contracts

import (
	"errors"
	"fmt"
	"strconv"

	json "github.com/bytedance/sonic"
)

// ErrorMarker is the only computed value a failed formula ever produces
const ErrorMarker = "#ERROR"

var CellNotFoundError = errors.New("cell not found")

var CellValueTypeError = errors.New("computed value should be a number or a string")

// CellValue holds either a number or a text. The zero value is the empty text.
type CellValue struct {
	number  float64
	text    string
	numeric bool
}

func NumberValue(number float64) CellValue {
	return CellValue{number: number, numeric: true}
}

func TextValue(text string) CellValue {
	return CellValue{text: text}
}

func ErrorValue() CellValue {
	return TextValue(ErrorMarker)
}

func (v CellValue) IsNumber() bool {
	return v.numeric
}

func (v CellValue) Number() float64 {
	return v.number
}

func (v CellValue) Text() string {
	return v.text
}

// String renders the value the way a cell displays it
func (v CellValue) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}

	return v.text
}

func (v CellValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}

	return json.Marshal(v.text)
}

func (v *CellValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch typed := raw.(type) {
	case float64:
		*v = NumberValue(typed)
	case string:
		*v = TextValue(typed)
	default:
		return fmt.Errorf("%w: got %T", CellValueTypeError, raw)
	}

	return nil
}

// CellData is one cell record. RawInput is what gets redisplayed for editing,
// ComputedValue is what gets displayed. Timestamp 0 means the cell was never written.
type CellData struct {
	RawInput      string    `json:"rawInput"`
	ComputedValue CellValue `json:"computedValue"`
	Timestamp     int64     `json:"timestamp,omitempty"`
}

// SpreadsheetState maps a cell address (case preserved) to its record
type SpreadsheetState map[string]CellData

func (s SpreadsheetState) Clone() SpreadsheetState {
	if s == nil {
		return nil
	}

	clone := make(SpreadsheetState, len(s))
	for cellId, cell := range s {
		clone[cellId] = cell
	}

	return clone
}
