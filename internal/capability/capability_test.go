package capability

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	const name = "test-feature"
	defer Unregister(name)

	fn := func() int { return 42 }
	Register(name, fn)

	provider, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	got, ok := provider.(func() int)
	if !ok {
		t.Fatalf("provider has type %T", provider)
	}
	if got() != 42 {
		t.Error("provider does not round-trip")
	}
}

func TestRegister_Replaces(t *testing.T) {
	const name = "test-replace"
	defer Unregister(name)

	Register(name, 1)
	Register(name, 2)
	provider, err := Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	if provider.(int) != 2 {
		t.Errorf("expected latest registration, got %v", provider)
	}
}

func TestLookup_Missing(t *testing.T) {
	_, err := Lookup("not-registered")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLookup_MissingKnownNameCarriesGuidance(t *testing.T) {
	// hexgrid ships without a provider
	_, err := Lookup(HexGrid)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), guidance[HexGrid]) {
		t.Errorf("error %q missing guidance text", err)
	}
}

func TestUnregister(t *testing.T) {
	const name = "test-unregister"
	Register(name, struct{}{})
	Unregister(name)
	if _, err := Lookup(name); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable after Unregister, got %v", err)
	}
}
