package contracts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFromPath(t *testing.T) {
	assert.Equal(t, "ValuationSavedEvent/1.0.0", generateKeyFromPath("events/valuation-saved/v1.json"))
	assert.Equal(t, "ImportCompletedEvent/2.0.0", generateKeyFromPath("events/import-completed/v2.json"))
	assert.Equal(t, "", generateKeyFromPath("events/flat.json"))
	assert.Equal(t, "", generateKeyFromPath("events/valuation-saved/latest.json"))
}

func TestEmbeddedSchemasRegistered(t *testing.T) {
	assert.Contains(t, compiledSchemas, EventValuationSaved+"/"+EventVersionV1)
	assert.Contains(t, compiledSchemas, EventImportCompleted+"/"+EventVersionV1)
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		body    string
		wantErr bool
	}{
		{
			name:  "valuation saved",
			event: EventValuationSaved,
			body: `{"property_id":7,"debitur":"PT Maju","updated_valuations":1,"created_valuations":0,
				"property_changed":true,"user_id":"8f14e45f-ceea-4e7a-9b1f-1c2d3e4f5a6b","occurred_at":"2026-10-18T10:00:00Z"}`,
		},
		{
			name:  "valuation saved without user",
			event: EventValuationSaved,
			body: `{"property_id":7,"updated_valuations":0,"created_valuations":2,
				"property_changed":false,"user_id":null,"occurred_at":"2026-10-18T10:00:00Z"}`,
		},
		{
			name:    "missing property id",
			event:   EventValuationSaved,
			body:    `{"updated_valuations":1,"created_valuations":0,"property_changed":true,"occurred_at":"2026-10-18T10:00:00Z"}`,
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			event:   EventImportCompleted,
			body:    `{"file_name":"a.csv","imported":1,"failed":0,"occurred_at":"yesterday"}`,
			wantErr: true,
		},
		{
			name:  "import completed",
			event: EventImportCompleted,
			body:  `{"file_name":"a.csv","imported":10,"failed":2,"occurred_at":"2026-10-18T10:00:00Z"}`,
		},
		{
			name:    "unknown event",
			event:   "PropertyDeletedEvent",
			body:    `{}`,
			wantErr: true,
		},
		{
			name:    "not json",
			event:   EventImportCompleted,
			body:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.event, EventVersionV1, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompileSchemas_BadLayout(t *testing.T) {
	fsys := fstest.MapFS{
		"events/orphan.json": &fstest.MapFile{Data: []byte(`{"type":"object"}`)},
	}
	_, err := compileSchemas(fsys)
	require.Error(t, err)
}
