package main

import (
	"fmt"
	"io"
	"log"
)

// cliLogger writes engine messages to stderr. Debug output needs --verbose.
type cliLogger struct {
	l       *log.Logger
	verbose bool
}

func newCLILogger(w io.Writer, verbose bool) *cliLogger {
	return &cliLogger{l: log.New(w, "", log.Ltime), verbose: verbose}
}

func (c *cliLogger) Debugf(format string, args ...any) {
	if c.verbose {
		c.l.Print("DEBUG " + fmt.Sprintf(format, args...))
	}
}

func (c *cliLogger) Infof(format string, args ...any) {
	if c.verbose {
		c.l.Print("INFO  " + fmt.Sprintf(format, args...))
	}
}

func (c *cliLogger) Warnf(format string, args ...any) {
	c.l.Print("WARN  " + fmt.Sprintf(format, args...))
}
func (c *cliLogger) Errorf(format string, args ...any) {
	c.l.Print("ERROR " + fmt.Sprintf(format, args...))
}
