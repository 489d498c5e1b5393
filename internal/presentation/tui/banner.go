package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerRows = []struct {
	text  string
	color string
}{
	{`   ____ _ _    ___                  _   `, "#f97316"},
	{`  / ___(_) |_ / _ \ _   _  ___  ___| |_ `, "#fb923c"},
	{` | |  _| | __| | | | | | |/ _ \/ __| __|`, "#fbbf24"},
	{` | |_| | | |_| |_| | |_| |  __/\__ \ |_ `, "#a3e635"},
	{`  \____|_|\__|\__\_\\__,_|\___||___/\__|`, "#4ade80"},
}

// PrintBanner writes the title banner using the color profile of w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, row := range bannerRows {
		fmt.Fprintln(w, out.String(row.text).Foreground(out.Color(row.color)))
	}
	fmt.Fprintln(w)
}
