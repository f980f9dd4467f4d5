// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
)

const fatalPrefix = "git-fat: "

// stand-ins for log.Fatal and os.Exit, patched by tests
var (
	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit
)

// wrapFatalln aborts a command which could not run
func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(fatalPrefix + msg)
		return
	}
	logFatalf(fatalPrefix+"%s: %v", msg, err)
}

// exitWithCodef reports a failed check to w, then exits with code
func exitWithCodef(w io.Writer, code int, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, fatalPrefix+format+"\n", args...)
	osExit(code)
}
