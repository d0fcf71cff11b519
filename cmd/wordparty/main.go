package main

import "github.com/mcoot/wordparty/internal/cli"

func main() {
	cli.Execute()
}
