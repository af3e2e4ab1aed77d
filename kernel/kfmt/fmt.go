// Package kfmt implements the kernel's console output. Output produced before
// a sink is attached is kept in a ring buffer and replayed once SetOutputSink
// is called.
package kfmt

import (
	"exofork/kernel/sync"
	"fmt"
	"io"
)

var (
	// earlyPrintBuffer is a ring buffer that stores Printf output before the
	// console is attached.
	earlyPrintBuffer ringBuffer

	// outputSink is a io.Writer where Printf will send its output. If set
	// to nil, then the output will be redirected to the earlyPrintBuffer.
	outputSink io.Writer

	// outputLock serialises writes from environments that fault
	// concurrently.
	outputLock sync.Spinlock
)

// SetOutputSink sets the default target for calls to Printf to w and copies
// any data accumulated in the earlyPrintBuffer to it.
func SetOutputSink(w io.Writer) {
	outputLock.Acquire()
	defer outputLock.Release()

	outputSink = w
	if w != nil {
		_, _ = io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the currently active output sink or nil if output is
// still being buffered.
func GetOutputSink() io.Writer {
	outputLock.Acquire()
	defer outputLock.Release()

	return outputSink
}

// Printf formats according to a format specifier and writes to the active
// output sink. The supported verbs are the ones of fmt.Printf.
func Printf(format string, args ...interface{}) {
	outputLock.Acquire()
	defer outputLock.Release()

	fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer. A nil writer selects the early print buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	outputLock.Acquire()
	defer outputLock.Release()

	fprintf(w, format, args...)
}

func fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = &earlyPrintBuffer
	}
	_, _ = fmt.Fprintf(w, format, args...)
}
