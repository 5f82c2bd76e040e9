package client

import (
	"context"
	"errors"
	"testing"

	"tutorgate/internal/domain"
	"tutorgate/internal/query"
)

func TestChatSession_EmptyInputIsNoOp(t *testing.T) {
	mock := &query.MockService{}
	chat := NewChatSession(mock, nil)

	chat.Send(context.Background(), "")
	chat.Send(context.Background(), "   \t\n")

	if got := len(chat.Transcript()); got != 0 {
		t.Fatalf("transcript length = %d, want 0", got)
	}
	if mock.Calls != 0 {
		t.Fatalf("no network call expected, got %d", mock.Calls)
	}
}

func TestChatSession_SuccessfulExchange(t *testing.T) {
	mock := &query.MockService{Answer: query.Answer{Text: "A digital twin is..."}}
	chat := NewChatSession(mock, nil)

	chat.Send(context.Background(), "What is a digital twin?")

	transcript := chat.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(transcript))
	}
	if transcript[0].Sender != domain.RoleUser || transcript[0].Text != "What is a digital twin?" {
		t.Fatalf("first entry = %+v", transcript[0])
	}
	if transcript[1].Sender != domain.RoleAssistant || transcript[1].Text != "A digital twin is..." {
		t.Fatalf("second entry = %+v", transcript[1])
	}
	if chat.Typing() {
		t.Fatalf("typing flag must be cleared after send")
	}
	if mock.Calls != 1 {
		t.Fatalf("exactly one call expected, got %d", mock.Calls)
	}
}

func TestChatSession_AnswerRelayedVerbatim(t *testing.T) {
	mock := &query.MockService{Answer: query.Answer{Text: "X"}}
	chat := NewChatSession(mock, nil)

	chat.Send(context.Background(), "q")

	last, ok := chat.Last()
	if !ok {
		t.Fatalf("expected a message")
	}
	if last.Text != "X" {
		t.Fatalf("assistant text = %q, want %q without transformation", last.Text, "X")
	}
}

func TestChatSession_FallbackOnFailure(t *testing.T) {
	mock := &query.MockService{Err: errors.New("http 500")}
	chat := NewChatSession(mock, nil)

	chat.Send(context.Background(), "hello")

	transcript := chat.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("transcript length = %d, want exactly 2 (user + fallback)", len(transcript))
	}
	if transcript[1].Sender != domain.RoleAssistant || transcript[1].Text != FallbackAnswer {
		t.Fatalf("second entry = %+v, want fallback", transcript[1])
	}
	if chat.Typing() {
		t.Fatalf("typing flag must be cleared on the failure path")
	}
}

func TestChatSession_FallbackOnUnavailableService(t *testing.T) {
	chat := NewChatSession(query.NewUnavailable("backend down"), nil)

	chat.Send(context.Background(), "hello")
	chat.Send(context.Background(), "still there?")

	transcript := chat.Transcript()
	if len(transcript) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(transcript))
	}
	for i := 1; i < 4; i += 2 {
		if transcript[i].Text != FallbackAnswer {
			t.Fatalf("entry %d = %q, want fallback", i, transcript[i].Text)
		}
	}
}

func TestChatSession_OrderPreservedAcrossTurns(t *testing.T) {
	mock := &query.MockService{Answer: query.Answer{Text: "pong"}}
	chat := NewChatSession(mock, nil)

	chat.Send(context.Background(), "one")
	chat.Send(context.Background(), "two")

	transcript := chat.Transcript()
	want := []struct {
		sender string
		text   string
	}{
		{domain.RoleUser, "one"},
		{domain.RoleAssistant, "pong"},
		{domain.RoleUser, "two"},
		{domain.RoleAssistant, "pong"},
	}
	if len(transcript) != len(want) {
		t.Fatalf("transcript length = %d, want %d", len(transcript), len(want))
	}
	for i, w := range want {
		if transcript[i].Sender != w.sender || transcript[i].Text != w.text {
			t.Fatalf("entry %d = %+v, want %+v", i, transcript[i], w)
		}
	}
}
