package store

import (
	"io"

	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger { return log.New(io.Discard) }
