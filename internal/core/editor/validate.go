package editor

import (
	"fmt"
	"strings"
	"time"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/numfmt"
)

const (
	phoneMinDigits = 10
	phoneMaxDigits = 15
	dateLayout     = "2006-01-02"
)

// Validate проверяет объединенное представление (снимок + правки + черновики)
// по набору правил для указанного типа объекта. Пустая карта означает, что ошибок нет.
func (r *Reconciler) Validate(propertyType string) domain.ValidationErrors {
	errs := make(domain.ValidationErrors)
	merged := r.Merged()

	switch propertyType {
	case domain.PropertiesTypeAset, domain.PropertiesTypeData:
	default:
		errs[domain.FieldPropertiesType] = "Property type must be 'aset' or 'data'"
	}

	if strings.TrimSpace(merged.ObjectType) == "" {
		errs[domain.FieldObjectType] = "Object type is required"
	}

	// площади проверяются по сырому вводу: в Merged нечисловое значение не попадает
	for _, field := range []string{domain.FieldLandArea, domain.FieldBuildingArea} {
		if msg := r.areaError(field, merged); msg != "" {
			errs[field] = msg
		}
	}

	if msg := coordinateError(merged.Location.Latitude, numfmt.ParseLatitude); msg != "" {
		errs[domain.FieldLatitude] = msg
	}
	if msg := coordinateError(merged.Location.Longitude, numfmt.ParseLongitude); msg != "" {
		errs[domain.FieldLongitude] = msg
	}

	switch propertyType {
	case domain.PropertiesTypeAset:
		if strings.TrimSpace(merged.Debitur) == "" {
			errs[domain.FieldDebitur] = "Debitur is required"
		}
	case domain.PropertiesTypeData:
		if msg := phoneError(merged.PhoneNumber); msg != "" {
			errs[domain.FieldPhoneNumber] = msg
		}
	}

	requireReport := propertyType == domain.PropertiesTypeAset
	for _, v := range merged.Valuations {
		validateValuation(errs, fmt.Sprintf("valuations.%d", v.ID), v, requireReport)
	}
	for i, v := range r.newValuations {
		validateValuation(errs, fmt.Sprintf("new_valuations.%d", i), v, requireReport)
	}

	return errs
}

func (r *Reconciler) areaError(field string, merged domain.Property) string {
	raw, edited := r.propertyEdits[field]
	if !edited {
		var current float64
		if field == domain.FieldLandArea {
			current = merged.LandArea
		} else {
			current = merged.BuildingArea
		}
		if current < 0 {
			return "Area must not be negative"
		}
		return ""
	}
	v, ok := numfmt.ParseNumber(raw)
	if !ok {
		return "Area must be a number"
	}
	if v < 0 {
		return "Area must not be negative"
	}
	return ""
}

func coordinateError(raw string, parse func(string) (float64, error)) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if _, err := parse(raw); err != nil {
		return "Coordinate is not a valid number in range"
	}
	return ""
}

func phoneError(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "Phone number is required"
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "Phone number must contain digits only"
		}
	}
	if len(phone) < phoneMinDigits || len(phone) > phoneMaxDigits {
		return fmt.Sprintf("Phone number must be %d-%d digits", phoneMinDigits, phoneMaxDigits)
	}
	return ""
}

func validateValuation(errs domain.ValidationErrors, prefix string, v domain.Valuation, requireReport bool) {
	if v.ValuationDate != "" {
		if _, err := time.Parse(dateLayout, v.ValuationDate); err != nil {
			errs[prefix+"."+domain.FieldValuationDate] = "Valuation date must be YYYY-MM-DD"
		}
	}
	if !requireReport {
		return
	}
	if strings.TrimSpace(v.ReportNumber) == "" {
		errs[prefix+"."+domain.FieldReportNumber] = "Report number is required"
	}
	if strings.TrimSpace(v.Appraiser) == "" {
		errs[prefix+"."+domain.FieldAppraiser] = "Appraiser is required"
	}
}
