package editor

import (
	"fmt"

	"appraisal-portal/internal/core/domain"
)

// Виды операций, приходящих из формы редактирования
const (
	OpProperty          = "property"
	OpValuation         = "valuation"
	OpNewValuation      = "new_valuation"
	OpNewValuationField = "new_valuation_field"
)

// Op - одна правка из пакета. Какие поля значимы, зависит от Kind.
type Op struct {
	Kind        string
	ValuationID int64
	Index       int
	Field       string
	Value       any
}

// Apply применяет пакет операций по порядку и останавливается на первой ошибке.
// Уже примененные операции не откатываются.
func (r *Reconciler) Apply(ops []Op) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case OpProperty:
			err = r.RecordPropertyChange(op.Field, op.Value)
		case OpValuation:
			err = r.RecordValuationChange(op.ValuationID, op.Field, op.Value)
		case OpNewValuation:
			r.RecordNewValuation(domain.Valuation{})
		case OpNewValuationField:
			err = r.UpdateNewValuationField(op.Index, op.Field, op.Value)
		default:
			err = fmt.Errorf("unknown operation kind %q", op.Kind)
		}
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// View - то, что форма показывает пользователю между правками.
type View struct {
	Merged        domain.Property
	NewValuations []domain.Valuation
	Diff          domain.EditDiff
	Errors        domain.ValidationErrors
	Dirty         bool
}

// View собирает представление; валидация идет по типу из объединенных данных.
func (r *Reconciler) View() View {
	merged := r.Merged()
	return View{
		Merged:        merged,
		NewValuations: r.NewValuations(),
		Diff:          r.Diff(),
		Errors:        r.Validate(merged.PropertiesType),
		Dirty:         r.IsDirty(),
	}
}

// Rebase заменяет снимок после сохранения и сбрасывает правки.
func (r *Reconciler) Rebase(base domain.Property) {
	r.base = base.Clone()
	r.reset()
}

// FromDraft строит сессию для нового объекта: все поля записаны как правки
// поверх пустого снимка, оценки стали черновиками в том же порядке.
func FromDraft(p domain.Property) *Reconciler {
	r := New(domain.Property{})
	r.propertyEdits = domain.ChangeSet{
		domain.FieldDebitur:        p.Debitur,
		domain.FieldLandArea:       p.LandArea,
		domain.FieldBuildingArea:   p.BuildingArea,
		domain.FieldPhoneNumber:    p.PhoneNumber,
		domain.FieldPropertiesType: p.PropertiesType,
		domain.FieldObjectType:     p.ObjectType,
		domain.FieldLatitude:       p.Location.Latitude,
		domain.FieldLongitude:      p.Location.Longitude,
		domain.FieldAddress:        p.Location.Address,
	}
	r.newValuations = make([]domain.Valuation, len(p.Valuations))
	copy(r.newValuations, p.Valuations)
	return r
}
