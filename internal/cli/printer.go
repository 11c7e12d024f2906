package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func printSuccess(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠️  "+format+"\n", a...)
}

func printHeading(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, format+"\n", a...)
}

func printError(w io.Writer, err error) {
	red.Fprintf(w, "Error: %v\n", err)
}

func printInfo(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, format+"\n", a...)
}
