package main

import (
	"collabSheet/contracts"
	"fmt"

	json "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// MessageValidator checks every message crossing a context boundary before it is acted on
type MessageValidator struct {
	validate *validator.Validate
}

func NewMessageValidator() *MessageValidator {
	return &MessageValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ParseBroadcastMessage decodes a payload received from the broadcast channel.
// The shape is checked on the raw document first: typed decoding alone would
// silently turn a missing or mistyped field into its zero value.
func (v *MessageValidator) ParseBroadcastMessage(payload []byte) (contracts.BroadcastMessage, error) {
	message := contracts.BroadcastMessage{}

	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return message, fmt.Errorf("%w: %s", contracts.InvalidMessageError, err.Error())
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return message, fmt.Errorf("%w: expected an object, got %T", contracts.InvalidMessageError, raw)
	}

	if cellId, ok := fields["cellId"].(string); !ok || cellId == "" {
		return message, fmt.Errorf("%w: cellId should be a non empty string", contracts.InvalidMessageError)
	}

	if _, ok = fields["rawInput"].(string); !ok {
		return message, fmt.Errorf("%w: rawInput should be a string", contracts.InvalidMessageError)
	}

	switch fields["computedValue"].(type) {
	case float64, string:
	default:
		return message, fmt.Errorf("%w: computedValue should be a number or a string", contracts.InvalidMessageError)
	}

	if _, ok = fields["timestamp"].(float64); !ok {
		return message, fmt.Errorf("%w: timestamp should be a number", contracts.InvalidMessageError)
	}

	if err := json.Unmarshal(payload, &message); err != nil {
		return message, fmt.Errorf("%w: %s", contracts.InvalidMessageError, err.Error())
	}

	if err := v.validate.Struct(message); err != nil {
		return message, fmt.Errorf("%w: %s", contracts.InvalidMessageError, err.Error())
	}

	return message, nil
}

func (v *MessageValidator) ValidateEvaluationRequest(request contracts.EvaluationRequest) error {
	if err := v.validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %s", contracts.InvalidMessageError, err.Error())
	}

	return nil
}

func (v *MessageValidator) ValidateStorageRequest(request contracts.StorageRequest) error {
	if err := v.validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %s", contracts.InvalidMessageError, err.Error())
	}

	return nil
}
