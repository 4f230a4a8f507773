package model

import "strings"

// FailureMarker is the prefix every textual rendering of a failed execution
// carries. Routing never parses it; it exists for prompts and logs.
const FailureMarker = "Error:"

// ResultStatus tags a QueryResult.
type ResultStatus string

const (
	ResultNone    ResultStatus = ""
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// QueryResult is the outcome of executing one SQL candidate: either a row
// payload or a failure message, never both.
type QueryResult struct {
	Status  ResultStatus `json:"status"`
	Payload string       `json:"payload,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Success builds a successful result carrying the serialized rows.
func Success(payload string) QueryResult {
	return QueryResult{Status: ResultSuccess, Payload: payload}
}

// Failure builds a failed result. A message that already carries the marker
// is stored without it so the marker is never doubled.
func Failure(message string) QueryResult {
	message = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(message), FailureMarker))
	return QueryResult{Status: ResultFailure, Message: message}
}

func (r QueryResult) IsFailure() bool {
	return r.Status == ResultFailure
}

func (r QueryResult) IsSuccess() bool {
	return r.Status == ResultSuccess
}

// String renders the payload, or the marker-prefixed failure message.
func (r QueryResult) String() string {
	switch r.Status {
	case ResultFailure:
		return FailureMarker + " " + r.Message
	case ResultSuccess:
		return r.Payload
	default:
		return ""
	}
}
