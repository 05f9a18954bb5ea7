// Command board is a single-user kanban board for the terminal and HTTP.
package main

import "github.com/mesh-intelligence/kanban/internal/cli"

func main() {
	cli.Execute()
}
