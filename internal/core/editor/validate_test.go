package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-portal/internal/core/domain"
)

func TestValidate_Phone(t *testing.T) {
	cases := []struct {
		phone   string
		wantErr bool
	}{
		{"12345", true},
		{"08123456789", false},
		{"0812-3456-789", true},
		{"1234567890123456", true},
		{"", true},
	}
	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			base := sampleProperty()
			base.PropertiesType = domain.PropertiesTypeData
			r := New(base)
			require.NoError(t, r.RecordPropertyChange(domain.FieldPhoneNumber, tc.phone))

			errs := r.Validate(domain.PropertiesTypeData)
			_, has := errs[domain.FieldPhoneNumber]
			assert.Equal(t, tc.wantErr, has, "errors: %v", errs)
		})
	}
}

func TestValidate_Aset(t *testing.T) {
	t.Run("valid snapshot has no errors", func(t *testing.T) {
		r := New(sampleProperty())
		assert.Empty(t, r.Validate(domain.PropertiesTypeAset))
	})

	t.Run("debitur and report metadata required", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldDebitur, "  "))
		require.NoError(t, r.RecordValuationChange(12, domain.FieldReportNumber, ""))
		r.RecordNewValuation(domain.Valuation{ReportNumber: "R-9"})

		errs := r.Validate(domain.PropertiesTypeAset)
		assert.Contains(t, errs, domain.FieldDebitur)
		assert.Contains(t, errs, "valuations.12.report_number")
		assert.Contains(t, errs, "new_valuations.0.appraiser")
		assert.NotContains(t, errs, "new_valuations.0.report_number")
		assert.NotContains(t, errs, "valuations.11.report_number")
	})

	t.Run("data type does not require report metadata", func(t *testing.T) {
		r := New(sampleProperty())
		r.RecordNewValuation(domain.Valuation{})
		errs := r.Validate(domain.PropertiesTypeData)
		assert.NotContains(t, errs, "new_valuations.0.appraiser")
	})
}

func TestValidate_Common(t *testing.T) {
	t.Run("unknown property type", func(t *testing.T) {
		r := New(sampleProperty())
		assert.Contains(t, r.Validate("rumah"), domain.FieldPropertiesType)
	})

	t.Run("non-numeric and negative areas", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldLandArea, "luas"))
		require.NoError(t, r.RecordPropertyChange(domain.FieldBuildingArea, "-5"))
		errs := r.Validate(domain.PropertiesTypeAset)
		assert.Equal(t, "Area must be a number", errs[domain.FieldLandArea])
		assert.Equal(t, "Area must not be negative", errs[domain.FieldBuildingArea])
	})

	t.Run("coordinates with comma pass, out of range fails", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldLatitude, "95,1"))
		errs := r.Validate(domain.PropertiesTypeAset)
		assert.Contains(t, errs, domain.FieldLatitude)
		assert.NotContains(t, errs, domain.FieldLongitude)
	})

	t.Run("bad valuation date", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(11, domain.FieldValuationDate, "10/01/2023"))
		assert.Contains(t, r.Validate(domain.PropertiesTypeAset), "valuations.11.valuation_date")
	})

	t.Run("object type required", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordPropertyChange(domain.FieldObjectType, ""))
		assert.Contains(t, r.Validate(domain.PropertiesTypeAset), domain.FieldObjectType)
	})

	t.Run("total value is not checked against components", func(t *testing.T) {
		r := New(sampleProperty())
		require.NoError(t, r.RecordValuationChange(11, domain.FieldLandValue, 10))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldBuildingValue, 10))
		require.NoError(t, r.RecordValuationChange(11, domain.FieldTotalValue, 5))
		assert.Empty(t, r.Validate(domain.PropertiesTypeAset))
	})
}
