package partner

import (
	"testing"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("creates supplier with valid input", func(t *testing.T) {
		supplier, err := NewSupplier("sup001", " Acme Fasteners ", 14)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, supplier.ID)
		assert.Equal(t, "SUP001", supplier.Code)
		assert.Equal(t, "Acme Fasteners", supplier.Name)
		assert.Equal(t, 14, supplier.LeadTimeDays)
		assert.True(t, supplier.IsActive())

		events := supplier.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSupplierCreated, events[0].EventType())
	})

	tests := []struct {
		name     string
		code     string
		supplier string
		lead     int
		wantCode string
	}{
		{"empty code", "", "Acme", 1, "INVALID_CODE"},
		{"bad code characters", "SUP 01", "Acme", 1, "INVALID_CODE"},
		{"empty name", "SUP", "  ", 1, "INVALID_NAME"},
		{"negative lead time", "SUP", "Acme", -1, "INVALID_LEAD_TIME"},
		{"lead time too long", "SUP", "Acme", 366, "INVALID_LEAD_TIME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supplier, err := NewSupplier(tt.code, tt.supplier, tt.lead)
			assert.Nil(t, supplier)
			assert.True(t, shared.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestSupplier_SetLeadTime(t *testing.T) {
	supplier, err := NewSupplier("SUP", "Acme", 5)
	require.NoError(t, err)
	supplier.ClearDomainEvents()

	require.NoError(t, supplier.SetLeadTime(21))
	assert.Equal(t, 21, supplier.LeadTimeDays)
	assert.Equal(t, 2, supplier.GetVersion())
	require.Len(t, supplier.GetDomainEvents(), 1)

	assert.Error(t, supplier.SetLeadTime(400))
	assert.Equal(t, 21, supplier.LeadTimeDays)
}

func TestSupplier_StatusChanges(t *testing.T) {
	supplier, err := NewSupplier("SUP", "Acme", 5)
	require.NoError(t, err)

	require.NoError(t, supplier.Block())
	assert.Error(t, supplier.Block())
	require.NoError(t, supplier.Deactivate())
	assert.Error(t, supplier.Deactivate())
	assert.False(t, supplier.IsActive())
}

func TestSupplier_Update(t *testing.T) {
	supplier, err := NewSupplier("SUP", "Acme", 5)
	require.NoError(t, err)

	require.NoError(t, supplier.Update("Acme Ltd", "Jo", "jo@acme.test", "555"))
	assert.Equal(t, "Acme Ltd", supplier.Name)
	assert.Error(t, supplier.Update("Acme Ltd", "Jo", "not-an-email", ""))
}
