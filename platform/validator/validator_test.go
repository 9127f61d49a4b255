package validator

import "testing"

type lineDTO struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type requestDTO struct {
	Tier  string    `json:"customerTier" validate:"omitempty,oneof=A B C"`
	Items []lineDTO `json:"items" validate:"dive"`
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(requestDTO{Tier: "Z", Items: []lineDTO{{SKU: "X", Quantity: 0}}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := FieldErrors(err)
	if fields["customerTier"] != "oneof=A B C" {
		t.Fatalf("unexpected tier error: %v", fields)
	}
	if fields["items[0].quantity"] != "min=1" {
		t.Fatalf("unexpected item error: %v", fields)
	}
}

func TestFieldErrors_NilForValid(t *testing.T) {
	v := New()
	if err := v.Struct(requestDTO{Tier: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FieldErrors(nil) != nil {
		t.Fatalf("expected nil map")
	}
}
