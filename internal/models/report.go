package models

// KPIs are the four headline cards. UniqueClients counts distinct client
// ids, so two clients sharing a name count twice, whereas the TopClients
// ranking groups by display name and shows them as one bar.
type KPIs struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalUnits    int     `json:"total_units"`
	UniqueClients int     `json:"unique_clients"`
	AverageBasket float64 `json:"average_basket"`
}

type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type RankedAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type ProductAmount struct {
	Product string  `json:"product"`
	Amount  float64 `json:"amount"`
}

type HierarchyNode struct {
	Category string          `json:"category"`
	Amount   float64         `json:"amount"`
	Children []ProductAmount `json:"children"`
}

// Heatmap holds summed amounts by weekday (rows) and hour (columns).
// Values[i][j] is zero when no sale fell in Weekdays[i] at Hours[j].
type Heatmap struct {
	Weekdays []string    `json:"weekdays"`
	Hours    []int       `json:"hours"`
	Values   [][]float64 `json:"values"`
}

type Report struct {
	KPIs        KPIs             `json:"kpis"`
	Monthly     []MonthlyAmount  `json:"monthly"`
	Categories  []CategoryAmount `json:"categories"`
	TopProducts []RankedAmount   `json:"top_products"`
	TopClients  []RankedAmount   `json:"top_clients"`
	Hierarchy   []HierarchyNode  `json:"hierarchy"`
	Heatmap     Heatmap          `json:"heatmap"`
	RowCount    int              `json:"row_count"`
}

// FilterOptions feeds the filter controls from the unfiltered dataset.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Cities     []string `json:"cities"`
	MinDate    string   `json:"min_date"`
	MaxDate    string   `json:"max_date"`
}
