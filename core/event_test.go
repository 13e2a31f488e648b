package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewID())
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent("run-1", "Coordinator")

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, "Coordinator", ev.Author)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Nil(t, ev.Content)
}

func TestNewUserMessageEvent(t *testing.T) {
	ev := NewUserMessageEvent("run-1", "hello")

	require.NotNil(t, ev.Content)
	assert.Equal(t, "user", ev.Content.Role)
	assert.Equal(t, "hello", ev.Text())
}

func TestNewFunctionResponseEvent(t *testing.T) {
	ev := NewFunctionResponseEvent("Booker", "fc-1", "booking_handler", "done", nil)

	responses := ev.GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "fc-1", responses[0].ID)
	assert.Equal(t, "booking_handler", responses[0].Name)
	assert.Equal(t, "done", responses[0].Response)
	assert.Empty(t, responses[0].Error)
	assert.Equal(t, "tool", ev.Content.Role)

	failed := NewFunctionResponseEvent("Booker", "fc-2", "booking_handler", nil, errors.New("boom"))
	assert.Equal(t, "boom", failed.GetFunctionResponses()[0].Error)
}

func TestEvent_IsFinalResponse(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "plain message",
			event: NewMessageEvent("agent", "hi"),
			want:  true,
		},
		{
			name: "partial chunk",
			event: func() Event {
				ev := NewMessageEvent("agent", "h")
				partial := true
				ev.Partial = &partial
				return ev
			}(),
			want: false,
		},
		{
			name: "pending function call",
			event: func() Event {
				ev := NewEvent("run-1", "agent")
				ev.Content = &Content{Role: "assistant", Parts: []Part{
					FunctionCallPart{FunctionCall: FunctionCall{ID: "fc-1", Name: "booking_handler"}},
				}}
				return ev
			}(),
			want: false,
		},
		{
			name:  "function response",
			event: NewFunctionResponseEvent("agent", "fc-1", "booking_handler", "ok", nil),
			want:  false,
		},
		{
			name:  "control event without content",
			event: NewEvent("run-1", "agent"),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsFinalResponse())
		})
	}
}

func TestEvent_GetFunctionCalls(t *testing.T) {
	ev := NewEvent("run-1", "agent")
	ev.Content = &Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "calling"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "a", Name: "first"}},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "b", Name: "second"}},
	}}

	calls := ev.GetFunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Name)
	assert.Equal(t, "second", calls[1].Name)
}

func TestContent_Text(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "hello"},
		FunctionCallPart{FunctionCall: FunctionCall{Name: "noise"}},
		TextPart{Text: "world"},
	}}
	assert.Equal(t, "hello world", c.Text())

	empty := Event{}
	assert.Equal(t, "", empty.Text())
}
