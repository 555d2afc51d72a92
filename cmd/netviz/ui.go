package main

import (
	"fmt"

	"github.com/fatih/color"
)

// Console colours for non-TUI output.
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Banner prints the command banner.
func Banner(subtitle string) {
	fmt.Printf("%s %s\n\n", Brand.Sprint("netviz"), Subtle.Sprint(subtitle))
}
