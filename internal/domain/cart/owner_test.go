package cart

import (
	"testing"

	"github.com/google/uuid"
)

func TestOwnerValidate(t *testing.T) {
	if err := UserOwner(uuid.New()).Validate(); err != nil {
		t.Fatalf("user owner: %v", err)
	}
	if err := SessionOwner("sess-123").Validate(); err != nil {
		t.Fatalf("session owner: %v", err)
	}
	if err := UserOwner(uuid.Nil).Validate(); err == nil {
		t.Fatalf("nil user id should be invalid")
	}
	if err := SessionOwner("  ").Validate(); err == nil {
		t.Fatalf("blank session id should be invalid")
	}
	if err := (Owner{}).Validate(); err == nil {
		t.Fatalf("zero owner should be invalid")
	}
}
