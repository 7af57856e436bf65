package service

import (
	"errors"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
)

// permanent stops retries on outcomes that another attempt cannot change.
func permanent(err error) error {
	if errors.Is(err, repository.ErrContentNotFound) ||
		errors.Is(err, repository.ErrDuplicateSlug) ||
		errors.Is(err, repository.ErrPageNotFound) {
		return resilience.Permanent(err)
	}
	return err
}

// mapRepoErr translates repository errors to service errors.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrContentNotFound):
		return ErrContentNotFound
	case errors.Is(err, repository.ErrDuplicateSlug):
		return ErrDuplicateSlug
	case errors.Is(err, repository.ErrPageNotFound):
		return ErrPageNotFound
	default:
		return err
	}
}
