package domain

// ChangeSet - разреженная запись правок: только измененные поля.
type ChangeSet map[string]any

// Поля объекта, которые можно править
const (
	FieldDebitur        = "debitur"
	FieldLandArea       = "land_area"
	FieldBuildingArea   = "building_area"
	FieldPhoneNumber    = "phone_number"
	FieldPropertiesType = "properties_type"
	FieldObjectType     = "object_type"

	// поля локации правятся вместе с объектом
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldAddress   = "address"
)

// Поля оценки
const (
	FieldValuationDate = "valuation_date"
	FieldLandValue     = "land_value"
	FieldBuildingValue = "building_value"
	FieldTotalValue    = "total_value"
	FieldReportNumber  = "report_number"
	FieldAppraiser     = "appraiser"
)

var propertyFields = map[string]bool{
	FieldDebitur:        true,
	FieldLandArea:       true,
	FieldBuildingArea:   true,
	FieldPhoneNumber:    true,
	FieldPropertiesType: true,
	FieldObjectType:     true,
	FieldLatitude:       true,
	FieldLongitude:      true,
	FieldAddress:        true,
}

var locationFields = map[string]bool{
	FieldLatitude:  true,
	FieldLongitude: true,
	FieldAddress:   true,
}

var valuationFields = map[string]bool{
	FieldValuationDate: true,
	FieldLandValue:     true,
	FieldBuildingValue: true,
	FieldTotalValue:    true,
	FieldReportNumber:  true,
	FieldAppraiser:     true,
}

func IsPropertyField(field string) bool  { return propertyFields[field] }
func IsLocationField(field string) bool  { return locationFields[field] }
func IsValuationField(field string) bool { return valuationFields[field] }

// Clone копирует набор правок.
func (c ChangeSet) Clone() ChangeSet {
	if c == nil {
		return nil
	}
	cp := make(ChangeSet, len(c))
	for k, v := range c {
		cp[k] = v
	}
	return cp
}

// Split делит правки объекта на правки самого объекта и его локации.
func (c ChangeSet) Split() (property ChangeSet, location ChangeSet) {
	property = make(ChangeSet)
	location = make(ChangeSet)
	for k, v := range c {
		if IsLocationField(k) {
			location[k] = v
		} else {
			property[k] = v
		}
	}
	return property, location
}

// EntityUpdate - набор правок для одной сохраненной сущности.
type EntityUpdate struct {
	ID      int64
	Changes ChangeSet
}

// EditDiff - результат сверки правок: что и в каком порядке отправлять в хранилище.
// Порядок применения: объект -> существующие оценки -> новые оценки.
type EditDiff struct {
	PropertyUpdate   *EntityUpdate
	ValuationUpdates []EntityUpdate
	NewValuations    []Valuation
}

// IsEmpty сообщает, что отправлять нечего.
func (d EditDiff) IsEmpty() bool {
	return d.PropertyUpdate == nil && len(d.ValuationUpdates) == 0 && len(d.NewValuations) == 0
}

// ValidationErrors - поле -> сообщение. Пустая карта означает, что все корректно.
type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool { return len(v) > 0 }
