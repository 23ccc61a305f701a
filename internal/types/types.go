// Package types provides shared types for the inkwell processing core.
// This package breaks import cycles between pkg/inkwell and the internal
// cache, resilience, and pipeline packages.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation identifies a text-processing operation kind. Resilience
// strategies, TTL overrides, and cache keys are all resolved per operation.
type Operation int

const (
	OpSummarize Operation = iota + 1
	OpSentiment
	OpKeyPoints
	OpQuestions
	OpQA
)

func (o Operation) String() string {
	switch o {
	case OpSummarize:
		return "summarize"
	case OpSentiment:
		return "sentiment"
	case OpKeyPoints:
		return "key_points"
	case OpQuestions:
		return "questions"
	case OpQA:
		return "qa"
	default:
		return "unknown"
	}
}

// Valid reports whether the operation is one of the known kinds.
func (o Operation) Valid() bool {
	return o >= OpSummarize && o <= OpQA
}

// ParseOperation converts an operation name into its typed value.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "summarize":
		return OpSummarize, nil
	case "sentiment":
		return OpSentiment, nil
	case "key_points":
		return OpKeyPoints, nil
	case "questions":
		return OpQuestions, nil
	case "qa":
		return OpQA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Operations returns all known operation kinds in declaration order.
func Operations() []Operation {
	return []Operation{OpSummarize, OpSentiment, OpKeyPoints, OpQuestions, OpQA}
}

// MarshalJSON encodes the operation as its string name.
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an operation from its string name.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Request describes a single text-processing call.
//
// Question is a pointer so that an absent question and an empty-but-present
// question produce different cache keys; the same distinction applies to a
// nil versus an empty Options map.
type Request struct {
	Operation Operation
	Text      string
	Question  *string
	Options   map[string]string
}

// NewRequest builds a request without a question.
func NewRequest(op Operation, text string) *Request {
	return &Request{Operation: op, Text: text}
}

// NewQARequest builds a question-answering request.
func NewQARequest(text, question string) *Request {
	return &Request{Operation: OpQA, Text: text, Question: &question}
}

// Response is the result of processing a single request.
type Response struct {
	Operation Operation
	Key       string
	Payload   []byte
	FromCache bool
}

// BatchItem holds the outcome for one request of a batch. Exactly one of
// Response and Err is set.
type BatchItem struct {
	Index    int
	Response *Response
	Err      error
}

// CacheEntry is the value stored per cache key. Entries are created once on
// a cache miss and never mutated afterwards.
type CacheEntry struct {
	Payload        []byte    `json:"payload"`
	Operation      Operation `json:"operation"`
	CreatedAt      time.Time `json:"created_at"`
	TTLSeconds     int64     `json:"ttl_seconds"`
	Compressed     bool      `json:"compressed"`
	OriginalSize   int       `json:"original_size_bytes"`
	CompressedSize int       `json:"compressed_size_bytes,omitempty"`
	HotEligible    bool      `json:"hot_eligible"`
}

// TTL returns the entry lifetime as a duration.
func (e *CacheEntry) TTL() time.Duration {
	return time.Duration(e.TTLSeconds) * time.Second
}

// ExpiresAt returns the wall-clock expiry of the entry.
func (e *CacheEntry) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL())
}

// IsExpired reports whether the entry is past its TTL.
func (e *CacheEntry) IsExpired() bool {
	if e.CreatedAt.IsZero() {
		return false
	}
	return time.Now().After(e.ExpiresAt())
}

// HotTierStats contains counters for the in-process cache tier.
type HotTierStats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
}
