package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWireShape(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "start",
			event: NewStart("Moka"),
			want:  `{"type":"start","metadata":{"agentName":"Moka"}}`,
		},
		{
			name:  "request",
			event: NewRequest("hello"),
			want:  `{"type":"request","content":"hello"}`,
		},
		{
			name:  "response",
			event: NewResponse("<p>hi</p>", "#4285F4"),
			want:  `{"type":"response","content":"<p>hi</p>","metadata":{"themeColor":"#4285F4"}}`,
		},
		{
			name:  "end",
			event: NewEnd("Moka"),
			want:  `{"type":"end","metadata":{"agentName":"Moka"}}`,
		},
		{
			name:  "error",
			event: NewError("Stream Text Failure"),
			want:  `{"type":"error","reason":"Stream Text Failure"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.event, decoded)
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{name: "start without agent", event: NewStart("")},
		{name: "response without color", event: NewResponse("<p>x</p>", "")},
		{name: "response without content", event: NewResponse("", "#fff")},
		{name: "nil", event: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.event)
			assert.ErrorIs(t, err, ErrInvalidEvent)
			assert.Nil(t, data)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "not json", payload: "{oops", wantErr: ErrInvalidEvent},
		{name: "unknown tag", payload: `{"type":"typing"}`, wantErr: ErrUnknownEventType},
		{name: "missing tag", payload: `{"content":"x"}`, wantErr: ErrUnknownEventType},
		{name: "missing metadata", payload: `{"type":"start"}`, wantErr: ErrInvalidEvent},
		{name: "wrong field type", payload: `{"type":"request","content":42}`, wantErr: ErrInvalidEvent},
		{name: "response missing color", payload: `{"type":"response","content":"x","metadata":{}}`, wantErr: ErrInvalidEvent},
		{name: "request missing content", payload: `{"type":"request"}`, wantErr: ErrInvalidEvent},
		{name: "error missing reason", payload: `{"type":"error"}`, wantErr: ErrInvalidEvent},
		{name: "null content", payload: `{"type":"request","content":null}`, wantErr: ErrInvalidEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Decode([]byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, e)
		})
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	e, err := Decode([]byte(`{"type":"error","reason":"boom","retry":true}`))

	require.NoError(t, err)
	assert.Equal(t, NewError("boom"), e)
}

func TestEmptyStringsAllowedWhereOptional(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Event
	}{
		{name: "empty request", payload: `{"type":"request","content":""}`, want: NewRequest("")},
		{name: "empty error", payload: `{"type":"error","reason":""}`, want: NewError("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Decode([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, e)

			data, err := Encode(tt.want)
			require.NoError(t, err)
			assert.JSONEq(t, tt.payload, string(data))
		})
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "chat:abc-123", Channel("abc-123"))
}
