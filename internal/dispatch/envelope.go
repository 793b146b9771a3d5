// Package dispatch turns business handlers into role-guarded HTTP handlers that
// always answer with a single JSON envelope.
package dispatch

import (
	"encoding/json"
	"net/http"

	"github.com/bizdir/bizdir/internal/shared"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform reply body of every dispatched request.
type Envelope struct {
	Status         string
	Data           any
	ErrorKind      shared.Kind
	Message        string
	Fields         map[string]string
	HTTPStatusCode int
}

type successBody struct {
	Status         string `json:"status"`
	Data           any    `json:"data"`
	HTTPStatusCode int    `json:"httpStatusCode"`
}

type errorBody struct {
	Status         string            `json:"status"`
	ErrorKind      shared.Kind       `json:"errorKind"`
	Message        string            `json:"message"`
	Fields         map[string]string `json:"fields,omitempty"`
	HTTPStatusCode int               `json:"httpStatusCode"`
}

// MarshalJSON emits the success or error shape depending on Status.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Status == StatusSuccess {
		return json.Marshal(successBody{Status: e.Status, Data: e.Data, HTTPStatusCode: e.HTTPStatusCode})
	}
	return json.Marshal(errorBody{
		Status:         StatusError,
		ErrorKind:      e.ErrorKind,
		Message:        e.Message,
		Fields:         e.Fields,
		HTTPStatusCode: e.HTTPStatusCode,
	})
}

// UnmarshalJSON accepts either shape. Data is decoded as json.RawMessage.
func (e *Envelope) UnmarshalJSON(raw []byte) error {
	var body struct {
		Status         string            `json:"status"`
		Data           json.RawMessage   `json:"data"`
		ErrorKind      shared.Kind       `json:"errorKind"`
		Message        string            `json:"message"`
		Fields         map[string]string `json:"fields"`
		HTTPStatusCode int               `json:"httpStatusCode"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	*e = Envelope{
		Status:         body.Status,
		ErrorKind:      body.ErrorKind,
		Message:        body.Message,
		Fields:         body.Fields,
		HTTPStatusCode: body.HTTPStatusCode,
	}
	if len(body.Data) > 0 {
		e.Data = body.Data
	}
	return nil
}

// Success wraps data in a success envelope. status 0 means 200.
func Success(status int, data any) Envelope {
	if status == 0 {
		status = http.StatusOK
	}
	return Envelope{Status: StatusSuccess, Data: data, HTTPStatusCode: status}
}

// Failure builds the error envelope for err, redacting internal details.
func Failure(err error) Envelope {
	kind := shared.KindOf(err)
	return Envelope{
		Status:         StatusError,
		ErrorKind:      kind,
		Message:        shared.MessageOf(err),
		Fields:         shared.FieldsOf(err),
		HTTPStatusCode: StatusFor(kind),
	}
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind shared.Kind) int {
	switch kind {
	case shared.KindUnauthenticated:
		return http.StatusUnauthorized
	case shared.KindForbidden:
		return http.StatusForbidden
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusConflict
	case shared.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Write sends env as the response body. Encoding failures degrade to a fixed
// internal-error body so exactly one envelope is always written.
func Write(w http.ResponseWriter, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		env = Failure(err)
		payload, _ = json.Marshal(env)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.HTTPStatusCode)
	_, _ = w.Write(payload)
}
