//go:build windows

package console

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
)

// enableVirtualTerminal switches the console behind out into virtual
// terminal mode, so the escape sequences of the line editor are interpreted.
func enableVirtualTerminal(out io.Writer) error {
	f, ok := out.(*os.File)
	if !ok {
		return nil
	}
	handle := windows.Handle(f.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		// Not a console, like a pipe.
		return nil
	}

	return windows.SetConsoleMode(handle, mode|
		windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING|
		windows.ENABLE_WRAP_AT_EOL_OUTPUT|
		windows.ENABLE_PROCESSED_OUTPUT)
}
