package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	infoColour    = color.New(color.FgCyan)
	successColour = color.New(color.FgGreen)
	errorColour   = color.New(color.FgRed, color.Bold)
)

// Console prints notices as coloured lines, for the commands that run
// without a screen.
type Console struct {
	Out io.Writer
}

// NewConsole writes to stderr.
func NewConsole() *Console {
	return &Console{Out: os.Stderr}
}

func (c *Console) Notify(kind Kind, text string) {
	out := c.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s %s\n", kindColour(kind).Sprintf("[%s]", kind), text)
}

func kindColour(k Kind) *color.Color {
	switch k {
	case Success:
		return successColour
	case Error:
		return errorColour
	default:
		return infoColour
	}
}
