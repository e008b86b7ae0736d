// Mesto serves the photo-sharing REST API over HTTP and the same accounts and
// cards over gRPC.
package main

import (
	"log"

	"github.com/patric-chuzhbe/mesto/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalf("unable to start: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Printf("server stopped with error: %v", err)
	}
}
