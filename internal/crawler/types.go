package crawler

// Placeholder marks listing fields the result page did not provide
const Placeholder = "N/A"

// Listing represents a scraped car listing
type Listing struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Price            string `json:"price"`
	Year             string `json:"year"`
	Mileage          string `json:"mileage"`
	Transmission     string `json:"transmission"`
	FuelType         string `json:"fuel_type"`
	Description      string `json:"description,omitempty"`
	AttentionGrabber string `json:"attention_grabber,omitempty"`
	Link             string `json:"link"`
	Provider         string `json:"provider"`
}

// Crawler interface defines the contract for listing sources
type Crawler interface {
	// FetchListings retrieves the current listings from a source
	FetchListings() ([]Listing, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}
