package domain

type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
}

// Statistics is the aggregate summary for one month/year.
// Values are zero, never null, when no records match.
type Statistics struct {
	TotalSaleAmount float64 `json:"totalSaleAmount"`
	SoldCount       int     `json:"soldCount"`
	UnsoldCount     int     `json:"unsoldCount"`
}

type PriceRangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type CombinedReport struct {
	Statistics  *Statistics       `json:"statistics"`
	PriceRanges []PriceRangeCount `json:"priceRanges"`
	Categories  []CategoryCount   `json:"categories"`
}
