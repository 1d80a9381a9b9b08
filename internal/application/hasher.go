package application

// PasswordHasher hashes and verifies administrator passwords. auth.BcryptHasher
// is the production implementation.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool

	// Equalize costs the same as a failed Verify and is used when there is
	// no stored hash to compare against.
	Equalize(plaintext string)
}
