package domain

// Bounds - видимая область карты после события смены границ.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains проверяет, попадает ли точка в границы.
// Поддерживает области, пересекающие антимеридиан (West > East).
func (b Bounds) Contains(lat, lng float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lng >= b.West && lng <= b.East
	}
	return lng >= b.West || lng <= b.East
}

// MapMarker - маркер объекта на карте. Координаты уже нормализованы.
type MapMarker struct {
	PropertyID     int64
	LocationID     int64
	Latitude       float64
	Longitude      float64
	Geohash        string
	Address        string
	Debitur        string
	PropertiesType string
	LastTotalValue int64
}

// MarkerCluster - группа маркеров с общим префиксом geohash.
type MarkerCluster struct {
	Geohash   string
	Latitude  float64
	Longitude float64
	Count     int
	// PropertyIDs заполняется, только пока кластер небольшой
	PropertyIDs []int64
}

// MapView - ответ на запрос маркеров: либо отдельные маркеры, либо кластеры.
type MapView struct {
	Markers   []MapMarker
	Clusters  []MarkerCluster
	Clustered bool
	Precision uint
}
