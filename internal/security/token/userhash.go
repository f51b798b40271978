package token

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

var ErrInvalidUserHash = errors.New("token: invalid user hash")

// UserHasher codifica ids numéricos como cadenas opacas reversibles.
type UserHasher struct {
	h *hashids.HashID
}

func NewUserHasher(salt string, minLength int) (*UserHasher, error) {
	if salt == "" {
		return nil, errors.New("token: hash salt is required")
	}
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("token: hashids: %w", err)
	}
	return &UserHasher{h: h}, nil
}

func (u *UserHasher) Encode(userID int64) (string, error) {
	if userID < 0 {
		return "", fmt.Errorf("token: negative user id %d", userID)
	}
	return u.h.EncodeInt64([]int64{userID})
}

// Decode invierte Encode. Exige exactamente un número.
func (u *UserHasher) Decode(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidUserHash
	}
	nums, err := u.h.DecodeInt64WithError(s)
	if err != nil || len(nums) != 1 {
		return 0, ErrInvalidUserHash
	}
	return nums[0], nil
}
