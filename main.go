package main

import "github.com/username/pypdash/src/cli"

func main() {
	cli.Execute()
}
