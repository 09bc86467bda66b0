package adapter

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/cozy-creator/tf-adapter/internal/npy"
	"go.uber.org/zap"
)

// HandleOutput prepares the backend reply for the caller. With an npy Accept
// header the body is wrapped as a 0-d byte string array; any other Accept
// value, empty included, gets the body untouched under that same type.
func (a *Adapter) HandleOutput(resp BackendResponse, rc RequestContext) ([]byte, string, error) {
	a.logger.Info("backend responded", zap.Int("status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("backend returned an error", zap.ByteString("body", resp.Body))
		body := strings.ToValidUTF8(string(resp.Body), "\uFFFD")
		return nil, "", a.signal(&BackendError{Status: resp.StatusCode, Body: body})
	}

	if rc.AcceptHeader != ContentTypeNPY {
		return resp.Body, rc.AcceptHeader, nil
	}

	var buf bytes.Buffer
	if err := npy.Encode(&buf, npy.FromBytes(resp.Body)); err != nil {
		return nil, "", fmt.Errorf("failed to encode response: %w", err)
	}

	return buf.Bytes(), ContentTypeNPY, nil
}
