// @title           giglink API
// @version         1.0
// @description     Booking lifecycle, ratings and realtime notifications for the giglink marketplace.
// @host            localhost:5000
// @BasePath        /

package main

import "giglink_backend/internal/app"

func main() {
	app.Run()
}
