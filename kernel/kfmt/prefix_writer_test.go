package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	const prefix = "[00001000] "

	specs := []struct {
		chunks []string
		exp    string
	}{
		{nil, ""},
		{[]string{""}, ""},
		{[]string{"\n"}, prefix + "\n"},
		{[]string{"hello"}, prefix + "hello"},
		{[]string{"i = 1\ni = 2\n"}, prefix + "i = 1\n" + prefix + "i = 2\n"},
		{[]string{"\n\nx"}, prefix + "\n" + prefix + "\n" + prefix + "x"},
		// A line split across writes gets a single prefix
		{[]string{"child: ", "i = 3", "\n", "parent: i = 1\n"}, prefix + "child: i = 3\n" + prefix + "parent: i = 1\n"},
	}

	for specIndex, spec := range specs {
		var (
			buf bytes.Buffer
			w   = PrefixWriter{Sink: &buf, Prefix: []byte(prefix)}
		)

		for _, chunk := range spec.chunks {
			wrote, err := w.Write([]byte(chunk))
			if err != nil {
				t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
			}
			if wrote != len(chunk) {
				t.Errorf("[spec %d] expected Write to report %d bytes; got %d", specIndex, len(chunk), wrote)
			}
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit int
	err   error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, w.err
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestPrefixWriterErrors(t *testing.T) {
	errSink := errors.New("console detached")

	specs := []struct {
		limit  int
		input  string
		expN   int
		expErr error
	}{
		// The prefix itself cannot be written
		{0, "abc\n", 0, errSink},
		// Prefix fits but the line does not
		{4 + 2, "abc\n", 2, errSink},
		// First line fits, the second prefix fails
		{4 + 4, "abc\ndef", 4, errSink},
		{64, "abc\ndef", 7, nil},
	}

	for specIndex, spec := range specs {
		w := PrefixWriter{
			Sink:   &failingWriter{limit: spec.limit, err: errSink},
			Prefix: []byte("env "),
		}

		n, err := w.Write([]byte(spec.input))
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
		if n != spec.expN {
			t.Errorf("[spec %d] expected %d bytes written; got %d", specIndex, spec.expN, n)
		}
	}
}
