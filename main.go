package main

import (
	"log"

	"github.com/aau-energy/microgrid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
