// Command todo manages a personal task list.
package main

import "github.com/tpsoftworks/todo/internal/cli"

func main() {
	cli.Execute()
}
