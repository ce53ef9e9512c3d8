package domain

// DashboardStats - сводка для главной страницы админки.
type DashboardStats struct {
	TotalProperties     int64
	PropertiesByType    map[string]int64
	TotalValuations     int64
	SumTotalValue       int64
	LatestValuations    []LatestValuation
	UnreadNotifications int64
}

// LatestValuation - строка блока "последние оценки".
type LatestValuation struct {
	ValuationID   int64
	PropertyID    int64
	Debitur       string
	ValuationDate string
	TotalValue    int64
	Appraiser     string
}
