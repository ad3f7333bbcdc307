package transport

import (
	"bytes"
	"encoding/json"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
)

// ContentTypeForm is the content type of HTML form posts.
const ContentTypeForm = "application/x-www-form-urlencoded"

// MsgMalformedBody is reported when a request body cannot be decoded.
const MsgMalformedBody = "Request body must be valid JSON"

// TaskRequest is the body accepted by the create and update endpoints.
// Fields stay raw so a missing value, a null and a wrong JSON type can be told apart.
type TaskRequest struct {
	Description json.RawMessage `json:"description"`
	Status      json.RawMessage `json:"status"`
}

// DecodeTaskRequest parses body. An empty body decodes to an empty request.
func DecodeTaskRequest(body []byte) (TaskRequest, error) {
	var req TaskRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return TaskRequest{}, &domain.ValidationError{Details: []string{MsgMalformedBody}}
	}
	return req, nil
}

// FormTaskRequest reads a request from url-encoded form fields.
// Form values are always strings.
func FormTaskRequest(args *fasthttp.Args) TaskRequest {
	var req TaskRequest
	if args.Has("description") {
		req.Description, _ = json.Marshal(string(args.Peek("description")))
	}
	if args.Has("status") {
		req.Status, _ = json.Marshal(string(args.Peek("status")))
	}
	return req
}

// Input converts the request into the service input.
// A description that is not a JSON string counts as absent. A status that is
// not a JSON string keeps its literal text so it fails the enum check.
func (r TaskRequest) Input() domain.TaskInput {
	var input domain.TaskInput
	if s, ok := rawString(r.Description); ok {
		input.Description = &s
	}
	if s, ok := rawString(r.Status); ok {
		input.Status = &s
	} else if literal := rawLiteral(r.Status); literal != "" {
		input.Status = &literal
	}
	return input
}

func rawString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawLiteral returns the JSON text of a non-null, non-falsy value.
func rawLiteral(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0":
		return ""
	}
	return string(raw)
}
