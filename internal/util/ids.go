// internal/util/ids.go
// Generator ID untuk request, sesi, dan hasil analisis

package util

import (
	"github.com/google/uuid"
)

func NewID() string {
	return uuid.New().String()
}

// ValidID true jika s adalah UUID yang valid (dipakai saat membaca klaim sesi).
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
