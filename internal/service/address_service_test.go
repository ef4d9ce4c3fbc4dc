package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/db/dbtest"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

func newAddressFixture(t *testing.T) (AddressService, uuid.UUID) {
	gdb := dbtest.New(t)
	user := &model.User{Name: "u", Email: uuid.NewString() + "@shop.io", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, repository.NewUserRepository(gdb).Create(context.Background(), user))
	return NewAddressService(repository.NewAddressRepository(gdb)), user.ID
}

func addressInput(line string, isDefault bool) AddressInput {
	return AddressInput{
		FullName: "Alice", Phone: "555", AddressLine1: line, City: "Pune", State: "MH", Pincode: "411001", IsDefault: isDefault,
	}
}

func countDefaults(addresses []model.Address) int {
	n := 0
	for _, a := range addresses {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestAddressService_SingleDefault(t *testing.T) {
	svc, userID := newAddressFixture(t)
	ctx := context.Background()

	first, err := svc.AddAddress(ctx, userID, addressInput("first", true))
	require.NoError(t, err)
	second, err := svc.AddAddress(ctx, userID, addressInput("second", true))
	require.NoError(t, err)
	third, err := svc.AddAddress(ctx, userID, addressInput("third", false))
	require.NoError(t, err)

	list, err := svc.ListAddresses(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, countDefaults(list))
	assert.Equal(t, second.ID, list[0].ID)

	_, err = svc.UpdateAddress(ctx, userID, first.ID, addressInput("first again", true))
	require.NoError(t, err)

	list, err = svc.ListAddresses(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(list))
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "first again", list[0].AddressLine1)

	require.NoError(t, svc.DeleteAddress(ctx, userID, first.ID))
	list, err = svc.ListAddresses(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 0, countDefaults(list))
	assert.Equal(t, third.ID, list[0].ID)
}

func TestAddressService_Ownership(t *testing.T) {
	svc, userID := newAddressFixture(t)
	ctx := context.Background()

	addr, err := svc.AddAddress(ctx, userID, addressInput("mine", false))
	require.NoError(t, err)

	_, err = svc.UpdateAddress(ctx, uuid.New(), addr.ID, addressInput("theirs", false))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteAddress(ctx, uuid.New(), addr.ID), apperrors.ErrNotFound)

	_, err = svc.UpdateAddress(ctx, userID, uuid.New(), addressInput("ghost", false))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddressService_Validation(t *testing.T) {
	svc, userID := newAddressFixture(t)

	in := addressInput("x", false)
	in.Pincode = ""
	_, err := svc.AddAddress(context.Background(), userID, in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
