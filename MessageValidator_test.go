package main

import (
	"collabSheet/contracts"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageValidator_ParseBroadcastMessage(t *testing.T) {
	validator := NewMessageValidator()

	t.Run("valid", func(t *testing.T) {
		testCases := map[string]contracts.BroadcastMessage{
			`{"cellId":"A1","rawInput":"=1+2","computedValue":3,"timestamp":1700000000000}`: {
				CellId: "A1", RawInput: "=1+2", ComputedValue: contracts.NumberValue(3), Timestamp: 1700000000000,
			},
			`{"cellId":"B2","rawInput":"hi","computedValue":"hi","timestamp":1}`: {
				CellId: "B2", RawInput: "hi", ComputedValue: contracts.TextValue("hi"), Timestamp: 1,
			},
			`{"cellId":"C3","rawInput":"","computedValue":"","timestamp":1}`: {
				CellId: "C3", ComputedValue: contracts.TextValue(""), Timestamp: 1,
			},
			`{"cellId":"D4","rawInput":"=1/0","computedValue":"#ERROR","timestamp":5,"extra":true}`: {
				CellId: "D4", RawInput: "=1/0", ComputedValue: contracts.ErrorValue(), Timestamp: 5,
			},
		}

		for payload, expected := range testCases {
			message, err := validator.ParseBroadcastMessage([]byte(payload))
			assert.NoError(t, err, payload)
			assert.Equal(t, expected, message, payload)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, payload := range []string{
			``,
			`not json`,
			`null`,
			`[]`,
			`"A1"`,
			`{}`,
			`{"rawInput":"1","computedValue":1,"timestamp":1}`,
			`{"cellId":"","rawInput":"1","computedValue":1,"timestamp":1}`,
			`{"cellId":5,"rawInput":"1","computedValue":1,"timestamp":1}`,
			`{"cellId":"A1","computedValue":1,"timestamp":1}`,
			`{"cellId":"A1","rawInput":1,"computedValue":1,"timestamp":1}`,
			`{"cellId":"A1","rawInput":"1","timestamp":1}`,
			`{"cellId":"A1","rawInput":"1","computedValue":null,"timestamp":1}`,
			`{"cellId":"A1","rawInput":"1","computedValue":true,"timestamp":1}`,
			`{"cellId":"A1","rawInput":"1","computedValue":1}`,
			`{"cellId":"A1","rawInput":"1","computedValue":1,"timestamp":"1"}`,
			`{"cellId":"A1","rawInput":"1","computedValue":1,"timestamp":-1}`,
			`{"cellId":"A1","rawInput":"1","computedValue":1,"timestamp":0}`,
		} {
			_, err := validator.ParseBroadcastMessage([]byte(payload))
			assert.ErrorIs(t, err, contracts.InvalidMessageError, payload)
		}
	})
}

func TestMessageValidator_ValidateEvaluationRequest(t *testing.T) {
	validator := NewMessageValidator()

	assert.NoError(t, validator.ValidateEvaluationRequest(contracts.EvaluationRequest{
		CellId: "A1", RawInput: "=1", Spreadsheet: contracts.SpreadsheetState{},
	}))

	assert.ErrorIs(t, validator.ValidateEvaluationRequest(contracts.EvaluationRequest{
		RawInput: "=1", Spreadsheet: contracts.SpreadsheetState{},
	}), contracts.InvalidMessageError)

	assert.ErrorIs(t, validator.ValidateEvaluationRequest(contracts.EvaluationRequest{
		CellId: "A1", RawInput: "=1",
	}), contracts.InvalidMessageError)
}

func TestMessageValidator_ValidateStorageRequest(t *testing.T) {
	validator := NewMessageValidator()

	assert.NoError(t, validator.ValidateStorageRequest(contracts.StorageRequest{
		Type: contracts.StorageRequestLoad, RequestId: "1",
	}))
	assert.NoError(t, validator.ValidateStorageRequest(contracts.StorageRequest{
		Type: contracts.StorageRequestSave, RequestId: "2", Payload: contracts.SpreadsheetState{},
	}))

	for _, request := range []contracts.StorageRequest{
		{Type: "drop", RequestId: "1"},
		{Type: contracts.StorageRequestLoad},
		{Type: contracts.StorageRequestSave, RequestId: "3"},
	} {
		assert.ErrorIs(t, validator.ValidateStorageRequest(request), contracts.InvalidMessageError)
	}
}
