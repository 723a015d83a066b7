package main

import "github.com/sljivkov/feedoracle/cli"

func main() {
	cli.Execute()
}
