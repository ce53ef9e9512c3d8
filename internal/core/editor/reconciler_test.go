package editor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-portal/internal/core/domain"
)

func sampleProperty() domain.Property {
	return domain.Property{
		ID:             7,
		Debitur:        "PT Sinar Jaya",
		LandArea:       120,
		BuildingArea:   80,
		PhoneNumber:    "08123456789",
		PropertiesType: domain.PropertiesTypeAset,
		ObjectType:     "ruko",
		Location: domain.Location{
			ID:        3,
			Latitude:  "-6,2088",
			Longitude: "106,8456",
			Address:   "Jl. Merdeka 1",
		},
		Valuations: []domain.Valuation{
			{ID: 11, PropertyID: 7, ValuationDate: "2023-01-10", TotalValue: 1000, ReportNumber: "R-1", Appraiser: "Budi"},
			{ID: 12, PropertyID: 7, ValuationDate: "2024-02-11", TotalValue: 2000, ReportNumber: "R-2", Appraiser: "Sari"},
		},
	}
}

func TestReconciler_PropertyChanges(t *testing.T) {
	t.Run("latest value per touched field only", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldDebitur, "PT A"))
		require.NoError(t, r.RecordPropertyChange(domain.FieldAddress, "Jl. Baru"))
		require.NoError(t, r.RecordPropertyChange(domain.FieldDebitur, "PT B"))

		diff := r.Diff()
		require.NotNil(t, diff.PropertyUpdate)
		assert.Equal(t, int64(7), diff.PropertyUpdate.ID)
		assert.Equal(t, domain.ChangeSet{
			domain.FieldDebitur: "PT B",
			domain.FieldAddress: "Jl. Baru",
		}, diff.PropertyUpdate.Changes)
	})

	t.Run("base snapshot is untouched", func(t *testing.T) {
		base := sampleProperty()
		r := New(base)
		require.NoError(t, r.RecordPropertyChange(domain.FieldDebitur, "PT Lain"))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldTotalValue, "Rp 5.000"))

		assert.Equal(t, "PT Sinar Jaya", r.Base().Debitur)
		assert.Equal(t, int64(1000), base.Valuations[0].TotalValue)

		merged := r.Merged()
		assert.Equal(t, "PT Lain", merged.Debitur)
		assert.Equal(t, int64(5000), merged.Valuations[0].TotalValue)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		r := New(sampleProperty())
		err := r.RecordPropertyChange("id", 1)
		assert.ErrorIs(t, err, domain.ErrUnknownField)
		assert.False(t, r.IsDirty())
	})

	t.Run("areas are normalized in diff", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldLandArea, "150,5"))
		diff := r.Diff()
		assert.Equal(t, 150.5, diff.PropertyUpdate.Changes[domain.FieldLandArea])
	})
}

func TestReconciler_ValuationChanges(t *testing.T) {
	t.Run("second write wins", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(12, domain.FieldAppraiser, "Andi"))
		require.NoError(t, r.RecordValuationChange(12, domain.FieldAppraiser, "Dewi"))

		diff := r.Diff()
		require.Len(t, diff.ValuationUpdates, 1)
		assert.Equal(t, int64(12), diff.ValuationUpdates[0].ID)
		assert.Equal(t, domain.ChangeSet{domain.FieldAppraiser: "Dewi"}, diff.ValuationUpdates[0].Changes)
	})

	t.Run("updates ordered by id", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(12, domain.FieldReportNumber, "R-22"))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldReportNumber, "R-11"))

		diff := r.Diff()
		require.Len(t, diff.ValuationUpdates, 2)
		assert.Equal(t, int64(11), diff.ValuationUpdates[0].ID)
		assert.Equal(t, int64(12), diff.ValuationUpdates[1].ID)
	})

	t.Run("unknown valuation id leaves state unchanged", func(t *testing.T) {
		r := New(sampleProperty())
		err := r.RecordValuationChange(999, domain.FieldAppraiser, "X")
		assert.ErrorIs(t, err, domain.ErrValuationNotFound)
		assert.False(t, r.IsDirty())
		assert.True(t, r.Diff().IsEmpty())
	})

	t.Run("money parsed from formatted string", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(11, domain.FieldLandValue, "Rp 1.250.000"))
		diff := r.Diff()
		assert.Equal(t, int64(1250000), diff.ValuationUpdates[0].Changes[domain.FieldLandValue])
	})

	t.Run("json numbers keep their value", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(11, domain.FieldLandValue, json.Number("1250000.5")))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldTotalValue, json.Number("1e6")))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldBuildingValue, json.Number("-500")))

		diff := r.Diff()
		require.Len(t, diff.ValuationUpdates, 1)
		changes := diff.ValuationUpdates[0].Changes
		assert.Equal(t, int64(1250000), changes[domain.FieldLandValue])
		assert.Equal(t, int64(1000000), changes[domain.FieldTotalValue])
		assert.Equal(t, int64(-500), changes[domain.FieldBuildingValue])

		merged := r.Merged()
		assert.Equal(t, int64(1250000), merged.Valuations[0].LandValue)
		assert.Equal(t, int64(1000000), merged.Valuations[0].TotalValue)
	})
}

func TestReconciler_NewValuations(t *testing.T) {
	t.Run("drafts prepend and position zero is the latest", func(t *testing.T) {
		r := New(sampleProperty())
		r.RecordNewValuation(domain.Valuation{ReportNumber: "first"})
		r.RecordNewValuation(domain.Valuation{ReportNumber: "second"})
		require.NoError(t, r.UpdateNewValuationField(0, domain.FieldAppraiser, "Rina"))

		drafts := r.NewValuations()
		require.Len(t, drafts, 2)
		assert.Equal(t, "second", drafts[0].ReportNumber)
		assert.Equal(t, "Rina", drafts[0].Appraiser)
		assert.Equal(t, "first", drafts[1].ReportNumber)
		assert.Empty(t, drafts[1].Appraiser)
	})

	t.Run("draft has no id and belongs to the property", func(t *testing.T) {
		r := New(sampleProperty())
		r.RecordNewValuation(domain.Valuation{ID: 55, PropertyID: 1})
		d := r.NewValuations()[0]
		assert.Zero(t, d.ID)
		assert.Equal(t, int64(7), d.PropertyID)
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		r := New(sampleProperty())
		r.RecordNewValuation(domain.Valuation{})
		require.NoError(t, r.UpdateNewValuationField(3, domain.FieldAppraiser, "X"))
		require.NoError(t, r.UpdateNewValuationField(-1, domain.FieldAppraiser, "X"))
		assert.Empty(t, r.NewValuations()[0].Appraiser)
	})

	t.Run("diff carries drafts in list order", func(t *testing.T) {
		r := New(sampleProperty())
		r.RecordNewValuation(domain.Valuation{ReportNumber: "a"})
		r.RecordNewValuation(domain.Valuation{ReportNumber: "b"})
		diff := r.Diff()
		require.Len(t, diff.NewValuations, 2)
		assert.Equal(t, "b", diff.NewValuations[0].ReportNumber)
		assert.Nil(t, diff.PropertyUpdate)
		assert.Empty(t, diff.ValuationUpdates)
	})
}

func TestReconciler_CommitDiscard(t *testing.T) {
	for name, finish := range map[string]func(*Reconciler){
		"commit":  (*Reconciler).Commit,
		"discard": (*Reconciler).Discard,
	} {
		t.Run(name, func(t *testing.T) {
			r := New(sampleProperty())
			require.NoError(t, r.RecordPropertyChange(domain.FieldObjectType, "rumah"))
			require.NoError(t, r.RecordValuationChange(11, domain.FieldTotalValue, 10))
			r.RecordNewValuation(domain.Valuation{})
			require.True(t, r.IsDirty())
			require.False(t, r.Diff().IsEmpty())

			finish(r)

			diff := r.Diff()
			assert.True(t, diff.IsEmpty())
			assert.Nil(t, diff.PropertyUpdate)
			assert.Empty(t, diff.ValuationUpdates)
			assert.Empty(t, diff.NewValuations)
			assert.False(t, r.IsDirty())
		})
	}
}
