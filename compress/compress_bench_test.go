package compress

import (
	"bytes"
	"io"
	"testing"
)

func BenchmarkWriter(b *testing.B) {
	data := transportLike(10000)

	for _, algorithm := range allAlgorithms {
		b.Run(algorithm.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				w, _ := NewWriter(io.Discard, algorithm)
				_, _ = w.Write(data)
				_ = w.Close()
			}
		})
	}
}

func BenchmarkReader(b *testing.B) {
	data := transportLike(10000)

	for _, algorithm := range allAlgorithms {
		var buf bytes.Buffer
		w, _ := NewWriter(&buf, algorithm)
		_, _ = w.Write(data)
		_ = w.Close()
		compressed := buf.Bytes()

		b.Run(algorithm.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				r, _ := NewReader(bytes.NewReader(compressed))
				_, _ = io.Copy(io.Discard, r)
				_ = r.Close()
			}
		})
	}
}
