package main

import (
	"fmt"
	"os"

	"photo-share/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "photo-share:", err)
		os.Exit(1)
	}
}
