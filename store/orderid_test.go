package store_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/omegeangel1/project-2-sub000/store"
)

var orderCodeRe = regexp.MustCompile(`^DOM[0-9]{6}[0-9A-Z]{4}$`)

func TestGenerateOrderCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := store.GenerateOrderCode("DOM")
		if len(code) != 13 {
			t.Fatalf("expected 13 chars, got %d (%q)", len(code), code)
		}
		if !strings.HasPrefix(code, "DOM") {
			t.Fatalf("missing prefix: %q", code)
		}
		if !orderCodeRe.MatchString(code) {
			t.Fatalf("unexpected shape: %q", code)
		}
	}
}

func TestOrderCodePrefix(t *testing.T) {
	cases := map[store.OrderType]string{
		store.OrderDomain:    "DOM",
		store.OrderVPS:       "VPS",
		store.OrderMinecraft: "MIN",
	}
	for typ, want := range cases {
		if got := store.OrderCodePrefix(typ); got != want {
			t.Errorf("prefix(%s) = %q, want %q", typ, got, want)
		}
	}
}
