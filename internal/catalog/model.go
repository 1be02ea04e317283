package catalog

// ProductSnapshot is a point-in-time read of a product. The cart never caches
// it; totals always reflect the pricing and stock at the moment of the read.
type ProductSnapshot struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	PointsRequired int64    `json:"pointsRequired"`
	Stock          int64    `json:"stock"`
	Status         string   `json:"status"`
	Images         []string `json:"images"`
	CategoryID     int64    `json:"categoryId"`
	CategoryName   string   `json:"categoryName"`
}
