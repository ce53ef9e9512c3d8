package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-portal/internal/core/domain"
)

func TestApply(t *testing.T) {
	t.Run("batch in order", func(t *testing.T) {
		r := New(sampleProperty())
		err := r.Apply([]Op{
			{Kind: OpProperty, Field: domain.FieldDebitur, Value: "PT Maju"},
			{Kind: OpValuation, ValuationID: 11, Field: domain.FieldTotalValue, Value: "Rp 2.000"},
			{Kind: OpNewValuation},
			{Kind: OpNewValuationField, Index: 0, Field: domain.FieldReportNumber, Value: "R-3"},
			{Kind: OpNewValuationField, Index: 0, Field: domain.FieldAppraiser, Value: "Tono"},
		})
		require.NoError(t, err)

		view := r.View()
		assert.True(t, view.Dirty)
		assert.Equal(t, "PT Maju", view.Merged.Debitur)
		assert.Equal(t, int64(2000), view.Merged.Valuations[0].TotalValue)
		require.Len(t, view.NewValuations, 1)
		assert.Equal(t, "R-3", view.NewValuations[0].ReportNumber)
		assert.Empty(t, view.Errors)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		r := New(sampleProperty())
		err := r.Apply([]Op{
			{Kind: OpProperty, Field: domain.FieldDebitur, Value: "PT Maju"},
			{Kind: "rename"},
			{Kind: OpProperty, Field: domain.FieldObjectType, Value: "gudang"},
		})
		require.Error(t, err)
		merged := r.Merged()
		assert.Equal(t, "PT Maju", merged.Debitur)
		assert.Equal(t, "ruko", merged.ObjectType)
	})
}

func TestRebase(t *testing.T) {
	r := New(sampleProperty())
	require.NoError(t, r.RecordPropertyChange(domain.FieldDebitur, "PT Baru"))

	saved := r.Merged()
	r.Commit()
	r.Rebase(saved)

	assert.False(t, r.IsDirty())
	assert.Equal(t, "PT Baru", r.Base().Debitur)
}

func TestFromDraft(t *testing.T) {
	p := domain.Property{
		PropertiesType: domain.PropertiesTypeAset,
		ObjectType:     "tanah",
		Location:       domain.Location{Latitude: "-6,9", Longitude: "107,6"},
		Valuations: []domain.Valuation{
			{ReportNumber: "R-1", Appraiser: "A"},
			{ReportNumber: "", Appraiser: "B"},
		},
	}
	errs := FromDraft(p).Validate(p.PropertiesType)

	assert.Contains(t, errs, domain.FieldDebitur)
	assert.Contains(t, errs, "new_valuations.1.report_number")
	assert.NotContains(t, errs, "new_valuations.0.report_number")
}
