package storage

import "dealer-scraper/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.VehicleListing) error
	Close() error
}

// ListingAppender appends rows to an existing artifact across runs.
type ListingAppender interface {
	Append(listings []*models.VehicleListing) error
}
