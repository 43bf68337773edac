package contracts

import "errors"

var InvalidMessageError = errors.New("invalid message")

var WorkerClosedError = errors.New("worker closed")

// BroadcastMessage is the wire record exchanged between views
type BroadcastMessage struct {
	CellId        string    `json:"cellId" validate:"required"`
	RawInput      string    `json:"rawInput"`
	ComputedValue CellValue `json:"computedValue"`
	Timestamp     int64     `json:"timestamp" validate:"gt=0"`
}

type EvaluationRequest struct {
	CellId      string           `json:"cellId" validate:"required"`
	RawInput    string           `json:"rawInput"`
	Spreadsheet SpreadsheetState `json:"spreadsheet" validate:"required"`
}

type EvaluationResponse struct {
	CellId        string    `json:"cellId"`
	RawInput      string    `json:"rawInput"`
	ComputedValue CellValue `json:"computedValue"`
}

type StorageRequestType string

const (
	StorageRequestSave StorageRequestType = "save"
	StorageRequestLoad StorageRequestType = "load"
)

type StorageResponseType string

const (
	StorageResponseLoaded StorageResponseType = "loaded"
	StorageResponseSaved  StorageResponseType = "saved"
	StorageResponseError  StorageResponseType = "error"
)

type StorageRequest struct {
	Type      StorageRequestType `json:"type" validate:"oneof=save load"`
	RequestId string             `json:"requestId" validate:"required"`
	Payload   SpreadsheetState   `json:"payload,omitempty" validate:"required_if=Type save"`
}

type StorageResponse struct {
	Type      StorageResponseType `json:"type"`
	RequestId string              `json:"requestId"`
	Payload   SpreadsheetState    `json:"payload,omitempty"`
	Error     string              `json:"error,omitempty"`
}
