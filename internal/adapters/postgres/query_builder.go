package postgres_adapter

import (
	"fmt"
	"strings"

	"appraisal-portal/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	// условия на оценки собираются в один EXISTS, чтобы относиться к одной и той же оценке
	valuationConditions []string
	args                []interface{}
	argId               int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

// nextArg регистрирует аргумент и возвращает его плейсхолдер
func (qb *queryBuilder) nextArg(arg interface{}) string {
	qb.args = append(qb.args, arg)
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addValuationCondition(condition string, fieldName string, arg interface{}) {
	qb.valuationConditions = append(qb.valuationConditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// build возвращает WHERE (или пустую строку) и аргументы
func (qb *queryBuilder) build() (string, []interface{}) {
	conditions := qb.conditions
	if len(qb.valuationConditions) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM valuations fv WHERE fv.property_id = p.id AND %s)",
			strings.Join(qb.valuationConditions, " AND "),
		))
	}
	if len(conditions) == 0 {
		return "", qb.args
	}
	return "WHERE " + strings.Join(conditions, " AND "), qb.args
}

// escapeLike экранирует спецсимволы LIKE, чтобы поиск был по подстроке как есть
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// applyFilters разбирает фильтры списка объектов в WHERE-часть
func applyFilters(filters domain.PropertyFilters) *queryBuilder {
	qb := newQueryBuilder()

	if q := strings.TrimSpace(filters.Query); q != "" {
		ph := qb.nextArg("%" + escapeLike(q) + "%")
		qb.conditions = append(qb.conditions, fmt.Sprintf("(p.debitur ILIKE %s OR l.address ILIKE %s)", ph, ph))
	}
	if filters.PropertiesType != "" {
		qb.addCondition("%s = $%d", "p.properties_type", filters.PropertiesType)
	}
	if filters.ObjectType != "" {
		qb.addCondition("%s = $%d", "p.object_type", filters.ObjectType)
	}

	if filters.ValuationFrom != "" {
		qb.addValuationCondition("%s >= $%d::date", "fv.valuation_date", filters.ValuationFrom)
	}
	if filters.ValuationTo != "" {
		qb.addValuationCondition("%s <= $%d::date", "fv.valuation_date", filters.ValuationTo)
	}
	if filters.MinTotalValue != nil {
		qb.addValuationCondition("%s >= $%d", "fv.total_value", *filters.MinTotalValue)
	}
	if filters.MaxTotalValue != nil {
		qb.addValuationCondition("%s <= $%d", "fv.total_value", *filters.MaxTotalValue)
	}

	return qb
}

// addBounds - условие попадания локации в видимую область карты.
// Если West > East, область пересекает антимеридиан.
func (qb *queryBuilder) addBounds(b domain.Bounds) {
	qb.addCondition("%s >= $%d", "l.latitude", b.South)
	qb.addCondition("%s <= $%d", "l.latitude", b.North)
	west := qb.nextArg(b.West)
	east := qb.nextArg(b.East)
	op := "AND"
	if b.West > b.East {
		op = "OR"
	}
	qb.conditions = append(qb.conditions, fmt.Sprintf("(l.longitude >= %s %s l.longitude <= %s)", west, op, east))
}

// setClause собирает "col = $n, ..." для UPDATE по белому списку колонок.
// Имена колонок берутся только из списка, значения уходят аргументами.
type setClause struct {
	parts []string
	args  []interface{}
}

func (s *setClause) add(column, valueExpr string, arg interface{}) {
	s.args = append(s.args, arg)
	s.parts = append(s.parts, fmt.Sprintf("%s = %s", column, fmt.Sprintf(valueExpr, len(s.args))))
}

// addRaw добавляет колонку с SQL-выражением без аргумента
func (s *setClause) addRaw(column, expr string) {
	s.parts = append(s.parts, fmt.Sprintf("%s = %s", column, expr))
}

func (s *setClause) empty() bool { return len(s.parts) == 0 }

// sql возвращает SET-часть и номер следующего плейсхолдера
func (s *setClause) sql() (string, int) {
	return strings.Join(s.parts, ", "), len(s.args) + 1
}
