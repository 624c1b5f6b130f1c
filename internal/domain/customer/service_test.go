package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/pkg/testdb"
)

func TestCustomerLifecycle(t *testing.T) {
	svc := NewService(testdb.Open(t, &Customer{}))

	created, err := svc.Create(7, &CreateRequest{
		Name:    "Dana Reyes",
		Company: "Reyes Builders",
		Email:   "Dana@Reyes.test",
		City:    "Springfield",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@reyes.test", created.Email)
	assert.Equal(t, uint(7), created.CreatedBy)
	assert.Equal(t, "Reyes Builders", created.DisplayName())

	_, err = svc.Create(7, &CreateRequest{Name: "Someone Else", Email: "dana@reyes.test"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// customers without email do not collide
	_, err = svc.Create(7, &CreateRequest{Name: "Walk-in"})
	require.NoError(t, err)
	_, err = svc.Create(7, &CreateRequest{Name: "Walk-in 2"})
	require.NoError(t, err)

	notes := "prefers morning delivery"
	updated, err := svc.Update(created.ID, &UpdateRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	_, err = svc.SetActive(created.ID, false)
	require.NoError(t, err)
	_, err = svc.GetActive(created.ID)
	assert.ErrorIs(t, err, ErrCustomerInactive)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.SetActive(999, true)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCustomerList(t *testing.T) {
	svc := NewService(testdb.Open(t, &Customer{}))
	fixtures := []CreateRequest{
		{Name: "Carla Moss", City: "Shelbyville"},
		{Name: "Ben Ortiz", Company: "Ortiz Plumbing", City: "Springfield"},
		{Name: "Amy Lin", Phone: "555-0199", City: "Springfield"},
	}
	for i := range fixtures {
		_, err := svc.Create(1, &fixtures[i])
		require.NoError(t, err)
	}

	all, err := svc.List(&ListRequest{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, all.Customers, 3)
	assert.Equal(t, "Amy Lin", all.Customers[0].Name)

	byCity, err := svc.List(&ListRequest{Page: 1, Limit: 20, City: "springfield"})
	require.NoError(t, err)
	assert.Len(t, byCity.Customers, 2)

	byCompany, err := svc.List(&ListRequest{Page: 1, Limit: 20, Search: "plumbing"})
	require.NoError(t, err)
	require.Len(t, byCompany.Customers, 1)
	assert.Equal(t, "Ben Ortiz", byCompany.Customers[0].Name)

	byPhone, err := svc.List(&ListRequest{Page: 1, Limit: 20, Search: "0199"})
	require.NoError(t, err)
	assert.Len(t, byPhone.Customers, 1)
}
