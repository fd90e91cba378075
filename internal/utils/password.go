package utils

import "golang.org/x/crypto/bcrypt"

// BcryptCost — стоимость bcrypt для новых хешей. Тесты понижают её до bcrypt.MinCost.
var BcryptCost = 12

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
