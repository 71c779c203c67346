package main

import "github.com/Simplici0/menucost/internal/cli"

func main() {
	cli.Execute()
}
