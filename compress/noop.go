package compress

import "io"

// noOpWriter passes bytes through unchanged; Close does not close the destination.
type noOpWriter struct {
	w io.Writer
}

func newNoOpWriter(w io.Writer) io.WriteCloser {
	return noOpWriter{w: w}
}

func (n noOpWriter) Write(p []byte) (int, error) {
	return n.w.Write(p)
}

func (noOpWriter) Close() error {
	return nil
}
