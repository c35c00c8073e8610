package logging

import (
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

const prefix = "tronterm"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init routes the standard logger to path. The terminal is owned by the
// animation, so with an empty path log output is discarded.
func Init(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nopCloser{}, nil
	}
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("logging initialized")
	return f, nil
}
