package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/voluzi/epochstat/cmd/epochstat/cmd"
)

func main() {
	cmd.Execute()
}
