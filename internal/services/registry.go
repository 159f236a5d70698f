package services

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	BookingService      BookingService
	RatingService       RatingService
	NotificationService NotificationService
}
