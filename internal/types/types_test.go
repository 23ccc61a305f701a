package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpSummarize, "summarize"},
		{OpSentiment, "sentiment"},
		{OpKeyPoints, "key_points"},
		{OpQuestions, "questions"},
		{OpQA, "qa"},
		{Operation(0), "unknown"},
		{Operation(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations() {
		parsed, err := ParseOperation(op.String())
		if err != nil {
			t.Errorf("ParseOperation(%q): %v", op.String(), err)
		}
		if parsed != op {
			t.Errorf("ParseOperation(%q) = %v, want %v", op.String(), parsed, op)
		}
	}

	if _, err := ParseOperation("translate"); err == nil {
		t.Error("expected error for unknown operation name")
	}
	if _, err := ParseOperation(""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestOperationJSON(t *testing.T) {
	data, err := json.Marshal(OpKeyPoints)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"key_points"` {
		t.Errorf("marshaled = %s, want \"key_points\"", data)
	}

	var op Operation
	if err := json.Unmarshal([]byte(`"qa"`), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if op != OpQA {
		t.Errorf("unmarshaled = %v, want OpQA", op)
	}

	if err := json.Unmarshal([]byte(`"nope"`), &op); err == nil {
		t.Error("expected error for unknown operation in JSON")
	}
}

func TestNewQARequestCarriesQuestion(t *testing.T) {
	req := NewQARequest("text", "why?")
	if req.Operation != OpQA {
		t.Errorf("operation = %v, want OpQA", req.Operation)
	}
	if req.Question == nil || *req.Question != "why?" {
		t.Error("question not carried")
	}
}

func TestCacheEntryExpiry(t *testing.T) {
	entry := &CacheEntry{
		CreatedAt:  time.Now().Add(-2 * time.Hour),
		TTLSeconds: 3600,
	}
	if !entry.IsExpired() {
		t.Error("entry created 2h ago with 1h TTL should be expired")
	}

	fresh := &CacheEntry{CreatedAt: time.Now(), TTLSeconds: 3600}
	if fresh.IsExpired() {
		t.Error("fresh entry should not be expired")
	}
}
