package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// crashHandler receives panics recovered by Go
var crashHandler atomic.Pointer[func(r any)]

// SetCrashHandler installs the handler run for a panicking goroutine started with Go
// The handler is expected to restore the terminal and exit; nil restores the default
func SetCrashHandler(h func(r any)) {
	if h == nil {
		crashHandler.Store(nil)
		return
	}
	crashHandler.Store(&h)
}

// HandleCrash dispatches r to the installed handler, or prints the stack and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}
	if h := crashHandler.Load(); h != nil {
		(*h)(r)
		return
	}
	fmt.Fprintf(os.Stderr, "\nCRASH DETECTED: %v\nStack Trace:\n%s\n", r, debug.Stack())
	os.Exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword for goroutines that may outlive the terminal
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
