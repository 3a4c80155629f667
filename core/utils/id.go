package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphanumeric  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	passwordChars = alphanumeric + "!@#$%^&*"
)

// GenerateState returns an opaque OAuth state value.
func GenerateState() string {
	id, err := gonanoid.Generate(alphanumeric, 32)
	if err != nil {
		return ""
	}
	return id
}

// GenerateTempPassword returns a random password for accounts created on
// agency install. The caller emails it to the owner.
func GenerateTempPassword(length int) (string, error) {
	return gonanoid.Generate(passwordChars, length)
}
