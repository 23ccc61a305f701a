package inkwell

import (
	"context"

	"github.com/tildesmith/inkwell/internal/types"
)

// Core request/response types, re-exported so callers never import
// internal packages.
type (
	Operation = types.Operation
	Request   = types.Request
	Response  = types.Response
	BatchItem = types.BatchItem

	LLMClient     = types.LLMClient
	LLMClientFunc = types.LLMClientFunc

	ResultValidator = types.ResultValidator
	MetricsRecorder = types.MetricsRecorder
	Logger          = types.Logger
)

// FallbackFunc produces a degraded result when an operation's call has
// failed for good.
type FallbackFunc func(ctx context.Context, cause error) ([]byte, error)

const (
	OpSummarize = types.OpSummarize
	OpSentiment = types.OpSentiment
	OpKeyPoints = types.OpKeyPoints
	OpQuestions = types.OpQuestions
	OpQA        = types.OpQA
)

// NewRequest builds a request for ops that need only text.
func NewRequest(op Operation, text string) *Request {
	return types.NewRequest(op, text)
}

// NewQARequest builds a question-answering request.
func NewQARequest(text, question string) *Request {
	return types.NewQARequest(text, question)
}

// ParseOperation resolves an operation from its wire name.
func ParseOperation(s string) (Operation, error) {
	return types.ParseOperation(s)
}

// Operations lists every supported operation.
func Operations() []Operation {
	return types.Operations()
}
