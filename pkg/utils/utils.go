package utils

import (
	"crypto/rand"
	"math/big"
)

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// InviteCodeLength is the length of the join code handed to the
// video-room collaborator.
const InviteCodeLength = 8

// GenerateInviteCode returns a random alphanumeric join code. Uniqueness
// is enforced by the database; callers retry on collision.
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
