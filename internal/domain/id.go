package domain

import "github.com/google/uuid"

// IDGenerator produces candidate contact ids.
type IDGenerator func() string

// NewID returns a random (v4) UUID string.
func NewID() string {
	return uuid.NewString()
}

// UniqueID draws ids from gen until one is not reported as taken.
func UniqueID(gen IDGenerator, taken func(string) bool) string {
	if gen == nil {
		gen = NewID
	}
	for {
		id := gen()
		if id != "" && !taken(id) {
			return id
		}
	}
}
