package proto

import (
	"bytes"
	"testing"

	"meshnode/internal/testutil"
)

func FuzzReadMessage(f *testing.F) {
	f.Add([]byte{0, 0, 0, 1, '{'})
	f.Add([]byte{0, 0, 0, 10, '{', '"', 't', 'y', 'p', 'e', '"', ':', '1', '}'})
	f.Fuzz(func(t *testing.T, data []byte) {
		data = testutil.CapBytes(data, testutil.DefaultMaxFuzzBytes)
		testutil.WithTimeout(t, testutil.DefaultFuzzTimeout, func() {
			r := bytes.NewReader(data)
			_, _ = ReadMessage(r)
		})
	})
}

func FuzzDecodeMessage(f *testing.F) {
	f.Add([]byte(`{"type":5,"id":"x"}`))
	f.Add([]byte(`{"type":8,"data":"{\"path\":\"/a\",\"value\":1}"}`))
	f.Fuzz(func(t *testing.T, data []byte) {
		data = testutil.CapBytes(data, testutil.DefaultMaxFuzzBytes)
		testutil.WithTimeout(t, testutil.DefaultFuzzTimeout, func() {
			m, err := DecodeMessage(data)
			if err == nil {
				_, _ = EncodeMessage(m)
			}
		})
	})
}
