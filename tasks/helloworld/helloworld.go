// Package helloworld is a minimal console package: it contributes one
// command to the console registry.
package helloworld

import "ember/services/console"

// Command prints a greeting from the package.
var Command = console.Command{
	Name:  "helloworld",
	Usage: "helloworld",
	Desc:  "Print a greeting from the helloworld package.",
	Run:   run,
}

func run(c *console.Console, args []string) error {
	c.Printf("From the helloworld package: Hello World\n")
	return nil
}
