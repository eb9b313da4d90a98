package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter records whether and how a response was written. For HTMX
// requests every status is sent as 200 because htmx ignores the body of
// non-2xx responses.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
	isHTMX  bool
	mu      sync.Mutex
}

func NewResponseWriter(w http.ResponseWriter, isHTMX bool) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK, isHTMX: isHTMX}
}

func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	w.mu.Unlock()

	if w.isHTMX {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	first := !w.written
	w.written = true
	w.mu.Unlock()

	if first {
		w.ResponseWriter.WriteHeader(w.status)
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status is the status the handler asked for, before any HTMX rewrite.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
