package adapter

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cozy-creator/tf-adapter/internal/npy"
	"go.uber.org/zap"
)

// HandleInput turns an npy request body into the prediction request
// {"inputs": <nested list>}. Image models expect the array as [1, H, W, 3];
// the shape is passed through unchecked.
func (a *Adapter) HandleInput(r io.Reader, rc RequestContext) (string, error) {
	if rc.RequestContentType != ContentTypeNPY {
		return "", a.signal(&UnsupportedContentTypeError{ContentType: rc.RequestContentType})
	}

	arr, err := npy.Decode(r)
	if err != nil {
		return "", a.signal(&MalformedPayloadError{Err: err})
	}

	a.logger.Debug("decoded input array",
		zap.Stringer("dtype", arr.DType),
		zap.Ints("shape", arr.Shape),
	)

	body, err := encodeEnvelope(arr)
	if err != nil {
		return "", a.signal(&MalformedPayloadError{Err: err})
	}

	return body, nil
}

func encodeEnvelope(arr *npy.Array) (string, error) {
	inputs, err := json.Marshal(arr.ToNested())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(inputs) + 12)
	sb.WriteString(`{"inputs": `)
	sb.Write(inputs)
	sb.WriteByte('}')

	return sb.String(), nil
}
