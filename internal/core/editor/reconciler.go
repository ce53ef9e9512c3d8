// Package editor накапливает правки объекта, его локации и оценок,
// не трогая загруженный снимок, и считает минимальный набор изменений для сохранения.
package editor

import (
	"fmt"
	"sort"

	"appraisal-portal/internal/core/domain"
)

// Reconciler - аккумулятор правок одной сессии редактирования.
// Не потокобезопасен: одна сессия принадлежит одному пользователю.
type Reconciler struct {
	base domain.Property

	propertyEdits  domain.ChangeSet
	valuationEdits map[int64]domain.ChangeSet
	// Новые оценки без id. Последняя добавленная всегда на позиции 0.
	newValuations []domain.Valuation
}

// New создает пустую сессию правок поверх снимка объекта.
func New(base domain.Property) *Reconciler {
	r := &Reconciler{base: base.Clone()}
	r.reset()
	return r
}

func (r *Reconciler) reset() {
	r.propertyEdits = make(domain.ChangeSet)
	r.valuationEdits = make(map[int64]domain.ChangeSet)
	r.newValuations = nil
}

// Base возвращает копию исходного снимка.
func (r *Reconciler) Base() domain.Property {
	return r.base.Clone()
}

// RecordPropertyChange запоминает значение поля объекта или его локации.
// Повторная запись того же поля перезаписывает прежнее значение.
func (r *Reconciler) RecordPropertyChange(field string, value any) error {
	if !domain.IsPropertyField(field) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	r.propertyEdits[field] = value
	return nil
}

// RecordValuationChange запоминает правку существующей оценки.
// Если id не принадлежит ни одной оценке объекта, состояние не меняется.
func (r *Reconciler) RecordValuationChange(valuationID int64, field string, value any) error {
	if !domain.IsValuationField(field) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	if _, ok := r.base.FindValuation(valuationID); !ok {
		return fmt.Errorf("%w: id %d", domain.ErrValuationNotFound, valuationID)
	}

	edits, ok := r.valuationEdits[valuationID]
	if !ok {
		edits = make(domain.ChangeSet)
		r.valuationEdits[valuationID] = edits
	}
	edits[field] = value
	return nil
}

// RecordNewValuation добавляет черновик оценки в начало списка новых оценок.
// У черновика нет id, PropertyID берется из снимка.
func (r *Reconciler) RecordNewValuation(draft domain.Valuation) {
	draft.ID = 0
	draft.PropertyID = r.base.ID
	r.newValuations = append([]domain.Valuation{draft}, r.newValuations...)
}

// UpdateNewValuationField меняет поле черновика по позиции в списке.
// Индекс вне диапазона - no-op, границы проверяет вызывающий.
func (r *Reconciler) UpdateNewValuationField(index int, field string, value any) error {
	if !domain.IsValuationField(field) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	if index < 0 || index >= len(r.newValuations) {
		return nil
	}
	applyValuationField(&r.newValuations[index], field, value)
	return nil
}

// NewValuations возвращает копию списка черновиков.
func (r *Reconciler) NewValuations() []domain.Valuation {
	out := make([]domain.Valuation, len(r.newValuations))
	copy(out, r.newValuations)
	return out
}

// Merged возвращает снимок с наложенными правками объекта, локации и существующих оценок.
// Черновики сюда не входят, их отдает NewValuations.
func (r *Reconciler) Merged() domain.Property {
	merged := r.base.Clone()
	ApplyPropertyChanges(&merged, r.propertyEdits)
	for i := range merged.Valuations {
		if edits, ok := r.valuationEdits[merged.Valuations[i].ID]; ok {
			ApplyValuationChanges(&merged.Valuations[i], edits)
		}
	}
	return merged
}

// IsDirty сообщает, есть ли несохраненные правки.
func (r *Reconciler) IsDirty() bool {
	return len(r.propertyEdits) > 0 || len(r.valuationEdits) > 0 || len(r.newValuations) > 0
}

// Diff собирает изменения в порядке применения: объект, существующие оценки, новые оценки.
// Сущности без единой записанной правки в результат не попадают.
func (r *Reconciler) Diff() domain.EditDiff {
	var diff domain.EditDiff

	if len(r.propertyEdits) > 0 {
		changes := make(domain.ChangeSet, len(r.propertyEdits))
		for field, value := range r.propertyEdits {
			changes[field] = normalizeValue(field, value)
		}
		diff.PropertyUpdate = &domain.EntityUpdate{ID: r.base.ID, Changes: changes}
	}

	for id, edits := range r.valuationEdits {
		if len(edits) == 0 {
			continue
		}
		changes := make(domain.ChangeSet, len(edits))
		for field, value := range edits {
			changes[field] = normalizeValue(field, value)
		}
		diff.ValuationUpdates = append(diff.ValuationUpdates, domain.EntityUpdate{ID: id, Changes: changes})
	}
	sort.Slice(diff.ValuationUpdates, func(i, j int) bool {
		return diff.ValuationUpdates[i].ID < diff.ValuationUpdates[j].ID
	})

	if len(r.newValuations) > 0 {
		diff.NewValuations = r.NewValuations()
	}

	return diff
}

// Commit очищает правки после того, как хранилище подтвердило все три категории изменений.
func (r *Reconciler) Commit() {
	r.reset()
}

// Discard отбрасывает правки при отмене.
func (r *Reconciler) Discard() {
	r.reset()
}
