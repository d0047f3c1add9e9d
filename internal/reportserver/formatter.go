package reportserver

import (
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sakhalinlab/waveproc/internal/log"
)

// Formatter encodes API responses as JSON or MessagePack
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResponse writes data with a 200 status in the format selected by the
// format query parameter.  JSON is the default; format=msgpack selects
// MessagePack.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any) {
	f.WriteResponseStatus(w, req, http.StatusOK, data)
}

// WriteResponseStatus writes data like WriteResponse under the given HTTP
// status code.  The Content-Type header is set before the status line goes
// out; headers written afterwards would be dropped.
func (f *Formatter) WriteResponseStatus(w http.ResponseWriter, req *http.Request, status int, data any) {
	encode := f.writeJSON
	contentType := "application/json"
	if req.URL.Query().Get("format") == "msgpack" {
		encode = f.writeMsgPack
		contentType = "application/x-msgpack"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := encode(w, data); err != nil {
		log.Errorf("error writing response: %v", err)
	}
}

func (f *Formatter) writeJSON(w http.ResponseWriter, data any) error {
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // keep field names consistent across formats
	return encoder.Encode(data)
}
