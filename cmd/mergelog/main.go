package main

import (
	"github.com/ariel-frischer/mergelog/internal/cli"
)

func main() {
	cli.Execute()
}
