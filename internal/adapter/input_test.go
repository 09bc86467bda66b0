package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/cozy-creator/tf-adapter/internal/npy"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func encodeArray(t *testing.T, arr *npy.Array) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, npy.Encode(&buf, arr))
	return &buf
}

func observedAdapter() (*Adapter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(WithLogger(zap.New(core))), logs
}

// TestHandleInput_ZeroImage covers the documented 1x2x2x3 example byte for byte.
func TestHandleInput_ZeroImage(t *testing.T) {
	arr, err := npy.New([]int{1, 2, 2, 3}, make([]int64, 12))
	require.NoError(t, err)

	got, err := New().HandleInput(encodeArray(t, arr), RequestContext{RequestContentType: ContentTypeNPY})
	require.NoError(t, err)
	assert.Equal(t, `{"inputs": [[[[0,0,0],[0,0,0]],[[0,0,0],[0,0,0]]]]}`, got)
}

func TestHandleInput_FloatZerosMatchIntegerForm(t *testing.T) {
	arr, err := npy.New([]int{1, 2, 2, 3}, make([]float64, 12))
	require.NoError(t, err)

	got, err := New().HandleInput(encodeArray(t, arr), RequestContext{RequestContentType: ContentTypeNPY})
	require.NoError(t, err)
	assert.Equal(t, `{"inputs": [[[[0,0,0],[0,0,0]],[[0,0,0],[0,0,0]]]]}`, got)
}

// TestHandleInput_RoundTrip decodes the envelope and rebuilds the array from it.
func TestHandleInput_RoundTrip(t *testing.T) {
	values := make([]float32, 2*3*3)
	for i := range values {
		values[i] = float32(i)*0.25 - 1
	}
	arr, err := npy.New([]int{1, 2, 3, 3}, values)
	require.NoError(t, err)

	got, err := New().HandleInput(encodeArray(t, arr), RequestContext{RequestContentType: ContentTypeNPY})
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(got), &envelope))
	require.Len(t, envelope, 1)
	require.Contains(t, envelope, "inputs")

	var nested [][][][]float32
	require.NoError(t, json.Unmarshal(envelope["inputs"], &nested))

	var flat []float32
	for _, a := range nested {
		for _, b := range a {
			for _, c := range b {
				flat = append(flat, c...)
			}
		}
	}

	rebuilt, err := npy.New([]int{len(nested), len(nested[0]), len(nested[0][0]), len(nested[0][0][0])}, flat)
	require.NoError(t, err)
	assert.Equal(t, arr.Shape, rebuilt.Shape)
	assert.Equal(t, arr.Data(), rebuilt.Data())
}

func TestHandleInput_MixedTypes(t *testing.T) {
	testCases := []struct {
		name string
		arr  func() (*npy.Array, error)
		want string
	}{
		{
			name: "uint8 pixels",
			arr:  func() (*npy.Array, error) { return npy.New([]int{1, 1, 2, 3}, []uint8{0, 128, 255, 1, 2, 3}) },
			want: `{"inputs": [[[[0,128,255],[1,2,3]]]]}`,
		},
		{
			name: "bools",
			arr:  func() (*npy.Array, error) { return npy.New([]int{2}, []bool{true, false}) },
			want: `{"inputs": [true,false]}`,
		},
		{
			name: "scalar",
			arr:  func() (*npy.Array, error) { return npy.New([]int{}, []float64{1.5}) },
			want: `{"inputs": 1.5}`,
		},
		{
			name: "empty",
			arr:  func() (*npy.Array, error) { return npy.New([]int{0}, []float32{}) },
			want: `{"inputs": []}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			arr, err := tc.arr()
			require.NoError(t, err)

			got, err := New().HandleInput(encodeArray(t, arr), RequestContext{RequestContentType: ContentTypeNPY})
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHandleInput_UnsupportedContentType(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		wantMessage string
	}{
		{name: "unset", contentType: "", wantMessage: `Unsupported content type "Unknown"`},
		{name: "json", contentType: "application/json", wantMessage: `Unsupported content type "application/json"`},
		{name: "npy with parameters", contentType: "application/x-npy; charset=binary", wantMessage: `Unsupported content type "application/x-npy; charset=binary"`},
		{name: "case differs", contentType: "Application/X-NPY", wantMessage: `Unsupported content type "Application/X-NPY"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, logs := observedAdapter()

			got, err := a.HandleInput(bytes.NewReader(nil), RequestContext{RequestContentType: tc.contentType})
			require.Error(t, err)
			assert.Empty(t, got)

			var unsupported *UnsupportedContentTypeError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, tc.contentType, unsupported.ContentType)

			var herr HandlerError
			require.True(t, errors.As(err, &herr))
			assert.Equal(t, 417, herr.StatusCode())
			assert.Equal(t, tc.wantMessage, herr.Message())
			assert.Equal(t, "Error: 417, "+tc.wantMessage, err.Error())

			entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantMessage, entries[0].Message)
		})
	}
}

func TestHandleInput_MalformedPayload(t *testing.T) {
	a, logs := observedAdapter()

	got, err := a.HandleInput(bytes.NewReader([]byte("definitely not numpy")), RequestContext{RequestContentType: ContentTypeNPY})
	require.Error(t, err)
	assert.Empty(t, got)

	var malformed *MalformedPayloadError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 400, malformed.StatusCode())
	assert.ErrorIs(t, err, npy.ErrInvalidHeader)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestHandleInput_NonFiniteValues(t *testing.T) {
	arr, err := npy.New([]int{3}, []float64{1, math.NaN(), math.Inf(1)})
	require.NoError(t, err)

	_, err = New().HandleInput(encodeArray(t, arr), RequestContext{RequestContentType: ContentTypeNPY})

	var malformed *MalformedPayloadError
	require.True(t, errors.As(err, &malformed))
	var unsupported *json.UnsupportedValueError
	assert.True(t, errors.As(err, &unsupported))
}

func TestEncodeEnvelope_NestedStructure(t *testing.T) {
	arr, err := npy.New([]int{2, 2}, []int32{1, -2, 3, -4})
	require.NoError(t, err)

	got, err := encodeEnvelope(arr)
	require.NoError(t, err)

	var decoded struct {
		Inputs [][]int32 `json:"inputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	if diff := cmp.Diff([][]int32{{1, -2}, {3, -4}}, decoded.Inputs); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
}
