package console

import "github.com/fatih/color"

// Available ANSI colors
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Faint  = color.New(color.Faint).SprintFunc()
)

// Flag renders a boolean status flag, highlighting the set state with c.
func Flag(set bool, c func(a ...interface{}) string) string {
	if set {
		return c("yes")
	}
	return Faint("no")
}
