package main

import "event-album/internal/app"

func main() {
	app.Run()
}
