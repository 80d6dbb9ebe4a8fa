package core

// Analytics is the server-computed aggregate view of one owner's expenses.
// The Query Gateway produces it with grouped SQL; the same shape can be
// derived client-side by the engine package from a full snapshot.
type Analytics struct {
	TotalExpenses   Money              `json:"totalExpenses"`
	TodayTotal      Money              `json:"todayTotal"`
	MonthlyTotal    Money              `json:"monthlyTotal"`
	CategoryTotals  map[Category]Money `json:"categoryTotals"`
	MonthlyExpenses map[string]Money   `json:"monthlyExpenses"`
}

// CategoryInfo is one entry of the category catalog served to clients.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

// CategoryCatalog returns the default catalog in seed order.
func CategoryCatalog() []CategoryInfo {
	return []CategoryInfo{
		{ID: CategoryFood, Name: "Food", Color: "#EF4444"},
		{ID: CategoryTransport, Name: "Transport", Color: "#3B82F6"},
		{ID: CategoryShopping, Name: "Shopping", Color: "#10B981"},
		{ID: CategoryEntertainment, Name: "Entertainment", Color: "#8B5CF6"},
		{ID: CategoryHealth, Name: "Health", Color: "#F59E0B"},
		{ID: CategoryBills, Name: "Bills", Color: "#06B6D4"},
		{ID: CategoryOther, Name: "Other", Color: "#6B7280"},
	}
}
