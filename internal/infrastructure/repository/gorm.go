// Package repository implements the projection's stores. The gorm-backed
// implementations translate driver errors into domain errors so the usecase
// layer can express its existence policy with errors.Is; Memory is the
// map-backed equivalent used in tests.
package repository

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/textdao/indexer/internal/domain"
)

// translate maps gorm's translated driver errors onto the domain errors the
// usecase layer matches against. Requires gorm.Config.TranslateError.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError{Resource: resource}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.AlreadyExistsError{Resource: resource}
	}
	return err
}

func toInt64Array(values []uint64) pq.Int64Array {
	if values == nil {
		return nil
	}
	out := make(pq.Int64Array, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

func toUint64Slice(values pq.Int64Array) []uint64 {
	if values == nil {
		return nil
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = uint64(v)
	}
	return out
}

func optInt64(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}

func optUint64(v *int64) *uint64 {
	if v == nil {
		return nil
	}
	out := uint64(*v)
	return &out
}
