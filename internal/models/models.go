package models

import "time"

// Product is one catalog result as returned by the Bazenda search API.
// Prices come over the wire as display strings ("199,90 ₺"); RawPrice
// carries the server-side numeric value when present.
type Product struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	ImageLink    string `json:"image_link,omitempty"`
	ProductLink  string `json:"product_link,omitempty"`
	OriginalLink string `json:"original_link,omitempty"`

	ShopID   int64  `json:"shop_id,omitempty"`
	ShopName string `json:"shop_name,omitempty"`

	Price          string  `json:"price"`
	LastPrice      string  `json:"last_price,omitempty"`
	RawPrice       float64 `json:"raw_price,omitempty"`
	DiscountAmount string  `json:"discount_amount,omitempty"`

	AllSizes     string `json:"all_sizes,omitempty"`
	SizeCount    int    `json:"size_count,omitempty"`
	ProductColor string `json:"product_color,omitempty"`
	ColorCount   int    `json:"color_count,omitempty"`

	// Populated on visual search results only.
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

// SearchResponse is the envelope of the /get_results endpoint.
type SearchResponse struct {
	Success      bool      `json:"success"`
	Results      []Product `json:"results"`
	TotalCount   int       `json:"total_count"`
	CurrentCount int       `json:"current_count"`
	Error        string    `json:"error,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// PricePoint is one observation in a favorite's price history.
type PricePoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// FavoriteRef is the minimal favorite projection sent to the backend
// on a full resync.
type FavoriteRef struct {
	ProductID    string  `json:"product_id"`
	CurrentPrice float64 `json:"current_price"`
}

// Notification is one push notification record held by the backend.
type Notification struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Body             string  `json:"body"`
	NotificationType string  `json:"notification_type"`
	ProductID        string  `json:"product_id,omitempty"`
	ProductLink      string  `json:"product_link,omitempty"`
	OldPrice         float64 `json:"old_price,omitempty"`
	NewPrice         float64 `json:"new_price,omitempty"`
	SentAt           string  `json:"sent_at,omitempty"`
	IsRead           int     `json:"is_read"`
	ReadAt           string  `json:"read_at,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// NotificationsPage is the envelope of the get-notifications endpoint.
type NotificationsPage struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
	TotalCount    int            `json:"total_count"`
	UnreadCount   int            `json:"unread_count"`
}
