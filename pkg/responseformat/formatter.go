package responseformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Content types
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgPack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct {
	allowCORS bool
}

// NewFormatter creates a new response formatter that sets a permissive CORS header
func NewFormatter() *Formatter {
	return &Formatter{allowCORS: true}
}

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WantsMsgPack reports whether the request asked for MessagePack
func WantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get("format") == "msgpack"
}

// WriteResponse writes data with status 200
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any) error {
	return f.WriteStatus(w, req, http.StatusOK, data)
}

// WriteStatus writes data with the given status. JSON is the default format;
// MessagePack is used when format=msgpack is specified.
func (f *Formatter) WriteStatus(w http.ResponseWriter, req *http.Request, status int, data any) error {
	if f.allowCORS {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	if WantsMsgPack(req) {
		return f.writeMsgPack(w, status, data)
	}
	return f.writeJSON(w, status, data)
}

// WriteError writes an ErrorBody in the negotiated format
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, code, message string) error {
	return f.WriteStatus(w, req, status, ErrorBody{Error: code, Message: message})
}

// Bodies are encoded in full before the status line goes out so that an
// unencodable value becomes a 500 rather than an empty 200.
func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return f.encodeFailed(w, err)
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	if err := encoder.Encode(data); err != nil {
		return f.encodeFailed(w, err)
	}
	w.Header().Set("Content-Type", ContentTypeMsgPack)
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *Formatter) encodeFailed(w http.ResponseWriter, cause error) error {
	body, _ := json.Marshal(ErrorBody{Error: "encode_failed", Message: "response could not be encoded"})
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(append(body, '\n'))
	return fmt.Errorf("encoding response: %w", cause)
}
