package password

import (
	"hotel-booking/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed   = errs.New("password hashing failed")
	ErrMismatch        = errs.New("password mismatch")
	ErrInvalidPassword = errs.New("invalid password")
)

// bcrypt silently ignores input past 72 bytes.
const maxBytes = 72

func HashPassword(plain string) (string, error) {
	if plain == "" || len(plain) > maxBytes {
		return "", ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Mark(errs.Wrap(err, "bcrypt"), ErrHashingFailed)
	}
	return string(hash), nil
}

// ComparePassword returns ErrMismatch for a wrong password; any other error
// means the stored hash itself is unusable.
func ComparePassword(hash, plain string) error {
	if hash == "" || plain == "" {
		return ErrInvalidPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errs.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return errs.Wrap(err, "malformed password hash")
	}
}

// dummyHash is compared against when the account does not exist, so an
// unknown email costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-account"), bcrypt.DefaultCost)

func CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
