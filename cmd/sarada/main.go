// Command sarada prepares a corpus of symbol scores, fits a transition model on it and
// generates new scores from the fitted model.
//
//	sarada prepare ./scores ./model --window-size 40
//	sarada fit ./model --epochs 100
//	sarada generate ./model --length 100 --output out.txt
//	sarada inspect ./model
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
