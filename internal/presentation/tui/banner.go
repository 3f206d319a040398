package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                      _               _`, "#818cf8"},
	{` _ __  _ __ ___  ___| |__   ___  ___| |_ ___ _ __`, "#a78bfa"},
	{`| '_ \| '__/ _ \/ __| '_ \ / _ \/ __| __/ _ \ '__|`, "#c084fc"},
	{`| |_) | | |  __/ (__| | | | (_) \__ \ ||  __/ |`, "#e879f9"},
	{`| .__/|_|  \___|\___|_| |_|\___/|___/\__\___|_|`, "#f472b6"},
	{`|_|`, "#fb7185"},
}

// PrintBanner writes the ASCII art banner to w, colored for the terminal's
// color profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
