package log

import (
	"fmt"
	"io"
	"os"
)

// MultiWriter fans one log line out to every appender in the chain. A
// failing appender does not stop the others; the last error wins.
type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

func (m *MultiWriter) AddConsoleAppender() *MultiWriter {
	return m.Add(os.Stdout)
}

// buildAppenders assembles the writer chain from the configuration. An
// empty appender list falls back to console only.
func buildAppenders(configs []AppenderConfig) (*MultiWriter, error) {
	w := NewMultiWriter()
	if len(configs) == 0 {
		return w.AddConsoleAppender(), nil
	}
	for _, c := range configs {
		switch c.Type {
		case "console":
			w.AddConsoleAppender()
		case "file":
			if err := w.AddFileAppender(c.Options); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("log: unknown appender type %q", c.Type)
		}
	}
	return w, nil
}
