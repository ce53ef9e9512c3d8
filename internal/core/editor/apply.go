package editor

import (
	"fmt"
	"strconv"
	"strings"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/numfmt"
)

// normalizeValue приводит значение из формы к типу колонки, в которую оно уйдет.
func normalizeValue(field string, value any) any {
	switch field {
	case domain.FieldLandArea, domain.FieldBuildingArea:
		if f, ok := numfmt.ParseNumber(value); ok {
			return f
		}
		return value
	case domain.FieldLandValue, domain.FieldBuildingValue, domain.FieldTotalValue:
		return numfmt.ParseAmount(value)
	default:
		return asString(value)
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// ApplyPropertyChanges накладывает правки на копию объекта (и его локацию).
// Нечисловые значения площадей пропускаются: их поймает валидация.
func ApplyPropertyChanges(p *domain.Property, changes domain.ChangeSet) {
	for field, value := range changes {
		switch field {
		case domain.FieldDebitur:
			p.Debitur = asString(value)
		case domain.FieldPhoneNumber:
			p.PhoneNumber = asString(value)
		case domain.FieldPropertiesType:
			p.PropertiesType = asString(value)
		case domain.FieldObjectType:
			p.ObjectType = asString(value)
		case domain.FieldLandArea:
			if f, ok := numfmt.ParseNumber(value); ok {
				p.LandArea = f
			}
		case domain.FieldBuildingArea:
			if f, ok := numfmt.ParseNumber(value); ok {
				p.BuildingArea = f
			}
		case domain.FieldLatitude:
			p.Location.Latitude = asString(value)
		case domain.FieldLongitude:
			p.Location.Longitude = asString(value)
		case domain.FieldAddress:
			p.Location.Address = asString(value)
		}
	}
}

// ApplyValuationChanges накладывает правки на копию оценки.
func ApplyValuationChanges(v *domain.Valuation, changes domain.ChangeSet) {
	for field, value := range changes {
		applyValuationField(v, field, value)
	}
}

func applyValuationField(v *domain.Valuation, field string, value any) {
	switch field {
	case domain.FieldValuationDate:
		v.ValuationDate = asString(value)
	case domain.FieldLandValue:
		v.LandValue = numfmt.ParseAmount(value)
	case domain.FieldBuildingValue:
		v.BuildingValue = numfmt.ParseAmount(value)
	case domain.FieldTotalValue:
		v.TotalValue = numfmt.ParseAmount(value)
	case domain.FieldReportNumber:
		v.ReportNumber = asString(value)
	case domain.FieldAppraiser:
		v.Appraiser = asString(value)
	}
}
