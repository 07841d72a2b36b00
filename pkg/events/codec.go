package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEvent     = errors.New("invalid event")
	ErrUnknownEventType = errors.New("unknown event type")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks an event against the wire schema.
func Validate(e Event) error {
	if e == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEvent, e.EventType(), err)
	}
	return nil
}

// Encode validates and serializes an event. Invalid events are never encoded.
func Encode(e Event) ([]byte, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
	}
	return data, nil
}

// Decode parses a wire payload into one of the five event kinds.
// Unknown tags and payloads missing required fields are rejected.
func Decode(data []byte) (Event, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	var (
		e   Event
		err error
	)
	switch tag.Type {
	case TypeStart:
		var v Start
		err = json.Unmarshal(data, &v)
		e = v
	case TypeRequest:
		var v struct {
			Content *string `json:"content" validate:"required"`
		}
		if err = decodePresent(data, &v); err == nil {
			e = NewRequest(*v.Content)
		}
	case TypeResponse:
		var v Response
		err = json.Unmarshal(data, &v)
		e = v
	case TypeEnd:
		var v End
		err = json.Unmarshal(data, &v)
		e = v
	case TypeError:
		var v struct {
			Reason *string `json:"reason" validate:"required"`
		}
		if err = decodePresent(data, &v); err == nil {
			e = NewError(*v.Reason)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, tag.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if err := Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

// decodePresent unmarshals into a struct of pointer fields and requires each
// tagged field to be present, while allowing empty strings.
func decodePresent(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return validate.Struct(v)
}
