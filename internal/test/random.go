package test

import (
	"math/rand/v2"
	"strings"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns an alphanumeric string with length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + rand.IntN(maxLen-minLen+1)

	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(asciiLetters[rand.IntN(len(asciiLetters))])
	}
	return b.String()
}

// RandomEmail returns a lower-case address that survives email normalization unchanged.
func RandomEmail() string {
	return strings.ToLower(RandomASCIIString(7, 14)) + "@example.com"
}

// RandomPushToken returns a well-formed Expo push token.
func RandomPushToken() string {
	return "ExponentPushToken[" + RandomASCIIString(22, 22) + "]"
}
