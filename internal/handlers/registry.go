package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	BookingHandler      *BookingHandler
	NotificationHandler *NotificationHandler
}
