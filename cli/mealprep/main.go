package main

import (
	"os"

	mealprepcmder "github.com/papercomputeco/mealprep/cmd/mealprep"
)

func main() {
	cmd := mealprepcmder.NewMealprepCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
