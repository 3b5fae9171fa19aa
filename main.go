package main

import (
	"os"

	"github.com/cavusmuhammed68/ICC-IEEE/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
