package main

import "github.com/hejijunhao/fwdigest/internal/cli"

func main() {
	cli.Execute()
}
