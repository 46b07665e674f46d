package main

import (
	"os"

	"ladatajusta.ar/newsroom/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
