package authtest

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/pkg/config"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

func TestMintRejectsBadInput(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "grocery-be", ExpirationMinutes: 5}

	if _, err := Mint(cfg, time.Now(), uuid.New(), "owner"); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := Mint(cfg, time.Now(), uuid.Nil, enums.UserRoleUser); err == nil {
		t.Fatal("expected missing user error")
	}
	noTTL := cfg
	noTTL.ExpirationMinutes = 0
	if _, err := Mint(noTTL, time.Now(), uuid.New(), enums.UserRoleUser); err == nil {
		t.Fatal("expected expiration error")
	}
}
