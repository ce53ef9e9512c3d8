package rabbitmq_adapter

import (
	"time"

	"appraisal-portal/internal/core/domain"

	"github.com/google/uuid"
)

// ValuationSavedDTO - тело события ValuationSavedEvent/1.0.0
type ValuationSavedDTO struct {
	PropertyID        int64      `json:"property_id"`
	Debitur           string     `json:"debitur,omitempty"`
	UpdatedValuations int        `json:"updated_valuations"`
	CreatedValuations int        `json:"created_valuations"`
	PropertyChanged   bool       `json:"property_changed"`
	UserID            *uuid.UUID `json:"user_id"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// ImportCompletedDTO - тело события ImportCompletedEvent/1.0.0
type ImportCompletedDTO struct {
	FileName   string     `json:"file_name"`
	Imported   int        `json:"imported"`
	Failed     int        `json:"failed"`
	UserID     *uuid.UUID `json:"user_id"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func occurredAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func fromDomainValuationSaved(e domain.ValuationSavedEvent) ValuationSavedDTO {
	return ValuationSavedDTO{
		PropertyID:        e.PropertyID,
		Debitur:           e.Debitur,
		UpdatedValuations: e.UpdatedValuations,
		CreatedValuations: e.CreatedValuations,
		PropertyChanged:   e.PropertyChanged,
		UserID:            e.UserID,
		OccurredAt:        occurredAtOrNow(e.OccurredAt),
	}
}

func (dto ValuationSavedDTO) toDomain() domain.ValuationSavedEvent {
	return domain.ValuationSavedEvent{
		PropertyID:        dto.PropertyID,
		Debitur:           dto.Debitur,
		UpdatedValuations: dto.UpdatedValuations,
		CreatedValuations: dto.CreatedValuations,
		PropertyChanged:   dto.PropertyChanged,
		UserID:            dto.UserID,
		OccurredAt:        dto.OccurredAt,
	}
}

func fromDomainImportCompleted(e domain.ImportCompletedEvent) ImportCompletedDTO {
	return ImportCompletedDTO{
		FileName:   e.FileName,
		Imported:   e.Imported,
		Failed:     e.Failed,
		UserID:     e.UserID,
		OccurredAt: occurredAtOrNow(e.OccurredAt),
	}
}

func (dto ImportCompletedDTO) toDomain() domain.ImportCompletedEvent {
	return domain.ImportCompletedEvent{
		FileName:   dto.FileName,
		Imported:   dto.Imported,
		Failed:     dto.Failed,
		UserID:     dto.UserID,
		OccurredAt: dto.OccurredAt,
	}
}
