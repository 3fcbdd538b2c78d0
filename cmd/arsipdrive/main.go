package main

import "github.com/awibisono/arsipdrive/internal/cli"

func main() {
	cli.Execute()
}
