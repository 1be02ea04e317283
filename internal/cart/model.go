package cart

import "time"

// Line is one user's intent to purchase one product. At most one line exists
// per (user, product) pair; adding the same product again merges quantities.
type Line struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	ProductID  int64     `json:"productId"`
	Quantity   int64     `json:"quantity"`
	IsSelected bool      `json:"isSelected"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DetailedLine is a cart line with its product resolved. A line whose product
// is inactive or soft-deleted never surfaces as a DetailedLine; views omit it
// instead of returning half-populated records.
type DetailedLine struct {
	Line
	ProductName        string   `json:"productName"`
	ProductDescription string   `json:"productDescription"`
	Price              float64  `json:"price"`
	PointsRequired     int64    `json:"pointsRequired"`
	Stock              int64    `json:"stock"`
	Images             []string `json:"images"`
	CategoryName       string   `json:"categoryName"`
}

// Summary covers selected lines with active products only.
type Summary struct {
	SelectedCount int64 `json:"selectedCount"`
	TotalPoints   int64 `json:"totalPoints"`
	TotalQuantity int64 `json:"totalQuantity"`
}

// Counts backs the cart badge. TotalCount also requires an active product so
// the badge never exceeds what the cart page can show.
type Counts struct {
	TotalCount    int64 `json:"totalCount"`
	SelectedCount int64 `json:"selectedCount"`
}

// CheckoutSelection is the handoff artifact consumed by order creation.
type CheckoutSelection struct {
	Items       []DetailedLine `json:"items"`
	TotalPoints int64          `json:"totalPoints"`
}
