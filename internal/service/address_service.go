package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// AddressInput carries the fields of an address book entry.
type AddressInput struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Pincode      string
	Country      string
	IsDefault    bool
}

// AddressService manages a user's address book.
type AddressService interface {
	AddAddress(ctx context.Context, userID uuid.UUID, in AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, in AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (in *AddressInput) normalize() error {
	for _, f := range []*string{&in.FullName, &in.Phone, &in.AddressLine1, &in.AddressLine2,
		&in.City, &in.State, &in.Pincode, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
	if in.FullName == "" || in.Phone == "" || in.AddressLine1 == "" ||
		in.City == "" || in.State == "" || in.Pincode == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "fullName, phone, addressLine1, city, state and pincode are required")
	}
	if in.Country == "" {
		in.Country = model.DefaultCountry
	}
	return nil
}

func (in *AddressInput) apply(a *model.Address) {
	a.FullName = in.FullName
	a.Phone = in.Phone
	a.AddressLine1 = in.AddressLine1
	a.AddressLine2 = in.AddressLine2
	a.City = in.City
	a.State = in.State
	a.Pincode = in.Pincode
	a.Country = in.Country
	a.IsDefault = in.IsDefault
}

// AddAddress saves a new address. When it is marked default every other
// address of the user loses the flag in the same transaction.
func (s *addressService) AddAddress(ctx context.Context, userID uuid.UUID, in AddressInput) (*model.Address, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	address := &model.Address{UserID: userID}
	in.apply(address)

	err := s.addressRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.AddressRepository) error {
		if err := lockOwner(ctx, repo, userID); err != nil {
			return err
		}
		if address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		if err := repo.Create(ctx, address); err != nil {
			return fmt.Errorf("create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress replaces an owned address. Setting it as default clears the flag
// on the user's other addresses.
func (s *addressService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, in AddressInput) (*model.Address, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var address *model.Address
	err := s.addressRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.AddressRepository) error {
		if err := lockOwner(ctx, repo, userID); err != nil {
			return err
		}

		existing, err := repo.FindByIDAndUser(ctx, addressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrNotFound, "address not found")
			}
			return fmt.Errorf("find address: %w", err)
		}

		if in.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		in.apply(existing)
		if err := repo.Save(ctx, existing); err != nil {
			return fmt.Errorf("save address: %w", err)
		}
		address = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func lockOwner(ctx context.Context, repo repository.AddressRepository, userID uuid.UUID) error {
	if err := repo.LockUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

// DeleteAddress removes an owned address. Deleting the default address leaves
// the user without one.
func (s *addressService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrNotFound, "address not found")
		}
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// ListAddresses returns the default address first, then newest first.
func (s *addressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}
