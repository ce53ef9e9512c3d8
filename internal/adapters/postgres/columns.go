package postgres_adapter

import (
	"fmt"
	"sort"
	"strings"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/numfmt"

	"github.com/mmcloughlin/geohash"
)

// точность geohash сохраненной локации (~5 м)
const locationGeohashPrecision = 9

type columnKind int

const (
	kindText columnKind = iota
	kindFloat
	kindMoney
	kindDate
)

type column struct {
	name string
	kind columnKind
}

var propertyColumns = map[string]column{
	domain.FieldDebitur:        {"debitur", kindText},
	domain.FieldLandArea:       {"land_area", kindFloat},
	domain.FieldBuildingArea:   {"building_area", kindFloat},
	domain.FieldPhoneNumber:    {"phone_number", kindText},
	domain.FieldPropertiesType: {"properties_type", kindText},
	domain.FieldObjectType:     {"object_type", kindText},
}

var valuationColumns = map[string]column{
	domain.FieldValuationDate: {"valuation_date", kindDate},
	domain.FieldLandValue:     {"land_value", kindMoney},
	domain.FieldBuildingValue: {"building_value", kindMoney},
	domain.FieldTotalValue:    {"total_value", kindMoney},
	domain.FieldReportNumber:  {"report_number", kindText},
	domain.FieldAppraiser:     {"appraiser", kindText},
}

func textValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// buildSetClause переводит правки в SET-часть. Поля вне белого списка - ошибка.
// Колонки идут в алфавитном порядке полей, чтобы SQL был детерминированным.
func buildSetClause(changes domain.ChangeSet, columns map[string]column) (*setClause, error) {
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	set := &setClause{}
	for _, f := range fields {
		col, ok := columns[f]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, f)
		}
		v := changes[f]
		switch col.kind {
		case kindText:
			set.add(col.name, "$%d", textValue(v))
		case kindFloat:
			n, _ := numfmt.ParseNumber(v)
			set.add(col.name, "$%d", n)
		case kindMoney:
			set.add(col.name, "$%d", numfmt.ParseAmount(v))
		case kindDate:
			set.add(col.name, "NULLIF($%d, '')::date", textValue(v))
		}
	}
	return set, nil
}

// locationRow - строка таблицы locations, готовая к записи
type locationRow struct {
	LatitudeRaw  string
	LongitudeRaw string
	Latitude     *float64
	Longitude    *float64
	Geohash      *string
	Address      string
}

// newLocationRow нормализует координаты. Неразборчивые координаты сохраняются только как текст.
func newLocationRow(loc domain.Location) locationRow {
	row := locationRow{
		LatitudeRaw:  strings.TrimSpace(loc.Latitude),
		LongitudeRaw: strings.TrimSpace(loc.Longitude),
		Address:      strings.TrimSpace(loc.Address),
	}
	lat, latErr := numfmt.ParseLatitude(row.LatitudeRaw)
	lng, lngErr := numfmt.ParseLongitude(row.LongitudeRaw)
	if row.LatitudeRaw == "" || row.LongitudeRaw == "" || latErr != nil || lngErr != nil {
		return row
	}
	hash := geohash.EncodeWithPrecision(lat, lng, locationGeohashPrecision)
	row.Latitude = &lat
	row.Longitude = &lng
	row.Geohash = &hash
	return row
}

// applyLocationChanges накладывает правки локации на текущие значения
func applyLocationChanges(current domain.Location, changes domain.ChangeSet) domain.Location {
	for f, v := range changes {
		switch f {
		case domain.FieldLatitude:
			current.Latitude = textValue(v)
		case domain.FieldLongitude:
			current.Longitude = textValue(v)
		case domain.FieldAddress:
			current.Address = textValue(v)
		}
	}
	return current
}
