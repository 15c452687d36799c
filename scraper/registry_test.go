package scraper

import (
	"reflect"
	"testing"

	"dealer-scraper/config"
	"dealer-scraper/utils"
)

func TestNamesSorted(t *testing.T) {
	want := []string{"abilbao", "astara", "callegari", "cidef", "guillermomorales"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v; want %v", got, want)
	}
}

func TestLookupKnownDealer(t *testing.T) {
	factory, err := Lookup("cidef")
	if err != nil {
		t.Fatalf("Lookup(cidef): %v", err)
	}

	site := factory(
		&config.Config{MaxRetries: 1, RetryDelayMs: 1, PageDelayMs: 1},
		config.DealerProfile{Name: "CIDEF", BonusThreshold: 0.5},
		utils.NewLogger(false),
		nil,
	)
	if site == nil {
		t.Fatal("factory returned nil Site")
	}
}

func TestLookupUnknownDealer(t *testing.T) {
	if _, err := Lookup("no-such-dealer"); err == nil {
		t.Error("expected error for unknown dealer")
	}
}
