package hash

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is the longest input bcrypt accepts. The limit is in
// bytes, so multibyte passwords hit it with fewer characters.
const MaxPasswordBytes = 72

// Encoder turns plaintext passwords into one-way hashes and checks them.
type Encoder interface {
	Encode(password string) (string, error)
	Matches(hash, password string) bool
}

type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{Cost: cost}
}

func (b Bcrypt) Encode(password string) (string, error) {
	return HashPassword(password, b.Cost)
}

func (b Bcrypt) Matches(hash, password string) bool {
	return CheckPassword(hash, password)
}

func HashPassword(password string, cost int) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
