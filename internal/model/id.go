package model

import (
	"strings"

	"github.com/google/uuid"
)

const idLength = 10

// Id prefixes
const (
	ProductIDPrefix = "prd_"
	OrderIDPrefix   = "ord_"
	UserIDPrefix    = "usr_"
)

// NewID returns prefix followed by ten random hex characters.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + raw[:idLength]
}
