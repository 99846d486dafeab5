package main

import "ratery_backend/internal/app"

func main() {
	app.Run()
}
