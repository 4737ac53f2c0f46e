package models

import (
	"reflect"
	"strings"
)

// QueryResult is the answer of the platform's domain query gateway for one request.
// It is never persisted or shared between requests.
type QueryResult struct {
	Summary string      `json:"summary"`
	Data    interface{} `json:"data,omitempty"`
}

// HasSummary reports whether the result carries a non-blank summary
func (q *QueryResult) HasSummary() bool {
	return q != nil && strings.TrimSpace(q.Summary) != ""
}

// HasUsableData reports whether Data holds anything beyond an empty value
func (q *QueryResult) HasUsableData() bool {
	if q == nil || q.Data == nil {
		return false
	}

	if v, ok := q.Data.(string); ok {
		return strings.TrimSpace(v) != ""
	}

	// Gateways running in-process may hand back typed collections such as []Appointment.
	v := reflect.ValueOf(q.Data)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() > 0
	case reflect.String:
		return strings.TrimSpace(v.String()) != ""
	default:
		return true
	}
}
