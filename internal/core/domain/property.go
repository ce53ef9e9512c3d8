package domain

import "time"

// Типы объектов, которые различает форма ввода
const (
	PropertiesTypeAset = "aset"
	PropertiesTypeData = "data"
)

// Property - объект оценки. Владеет ровно одной локацией и упорядоченным списком оценок.
type Property struct {
	ID             int64
	Debitur        string
	LandArea       float64
	BuildingArea   float64
	PhoneNumber    string
	PropertiesType string
	ObjectType     string

	Location   Location
	Valuations []Valuation // порядок вставки = хронологический порядок ввода

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location - координаты и адрес объекта. Не живет отдельно от Property.
type Location struct {
	ID int64 // 0, пока локация не сохранена
	// Координаты хранятся в том виде, в каком их ввели (возможна запятая вместо точки).
	Latitude  string
	Longitude string
	Address   string
}

// Valuation - одна оценка объекта.
// TotalValue вводится отдельно и не сверяется с LandValue+BuildingValue.
type Valuation struct {
	ID            int64 // 0 у черновиков
	PropertyID    int64
	ValuationDate string // ISO дата YYYY-MM-DD
	LandValue     int64
	BuildingValue int64
	TotalValue    int64
	ReportNumber  string
	Appraiser     string
	CreatedAt     time.Time
}

// Clone возвращает глубокую копию объекта, чтобы правки не трогали исходный снимок.
func (p Property) Clone() Property {
	cp := p
	if p.Valuations != nil {
		cp.Valuations = make([]Valuation, len(p.Valuations))
		copy(cp.Valuations, p.Valuations)
	}
	return cp
}

// FindValuation ищет оценку по id среди уже сохраненных.
func (p Property) FindValuation(id int64) (Valuation, bool) {
	if id == 0 {
		return Valuation{}, false
	}
	for _, v := range p.Valuations {
		if v.ID == id {
			return v, true
		}
	}
	return Valuation{}, false
}

// LatestValuation возвращает последнюю введенную оценку (по порядку ввода).
func (p Property) LatestValuation() (Valuation, bool) {
	if len(p.Valuations) == 0 {
		return Valuation{}, false
	}
	return p.Valuations[len(p.Valuations)-1], true
}

// PropertyFilters - фильтры для списка объектов и экспорта.
type PropertyFilters struct {
	Query          string
	PropertiesType string
	ObjectType     string
	ValuationFrom  string
	ValuationTo    string
	MinTotalValue  *int64
	MaxTotalValue  *int64
}

// PropertyListItem - строка таблицы объектов.
type PropertyListItem struct {
	ID                int64
	Debitur           string
	PropertiesType    string
	ObjectType        string
	PhoneNumber       string
	LandArea          float64
	BuildingArea      float64
	Address           string
	Latitude          string
	Longitude         string
	ValuationsCount   int
	LastValuationDate string
	LastTotalValue    int64
	LastReportNumber  string
	UpdatedAt         time.Time
}

// PaginatedProperties - ответ репозитория со страницей объектов.
type PaginatedProperties struct {
	Items        []PropertyListItem
	TotalCount   int64
	CurrentPage  int
	ItemsPerPage int
}
