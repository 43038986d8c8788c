package chat

import (
	"strings"
	"testing"
)

func TestContinueRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		wantErr bool
	}{
		{name: "empty action is allowed", action: ""},
		{name: "short action", action: "문을 연다"},
		{name: "exactly at limit", action: strings.Repeat("가", MaxActionLength)},
		{name: "over limit", action: strings.Repeat("가", MaxActionLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ContinueRequest{Action: tt.action}
			err := req.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestAnswerRequest_Validate(t *testing.T) {
	if err := (&AnswerRequest{}).Validate(); err == nil {
		t.Error("Expected error for missing option")
	}
	zero := 0
	if err := (&AnswerRequest{Option: &zero}).Validate(); err != nil {
		t.Errorf("Expected option 0 to be valid, got %v", err)
	}
}
