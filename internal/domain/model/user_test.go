//go:build !integration

package model

import "testing"

func TestNewUser(t *testing.T) {
	u := NewUser("", "  Alice@Example.COM ", false)
	if u.ID == "" {
		t.Fatal("expected a generated id")
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email = %q", u.Email)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set")
	}

	u2 := NewUser("explicit-id", "a@b.com", true)
	if u2.ID != "explicit-id" || !u2.Premium {
		t.Fatalf("user = %+v", u2)
	}
}

func TestUserIsZero(t *testing.T) {
	var nilUser *User
	if !nilUser.IsZero() {
		t.Fatal("nil user must be zero")
	}
	if !(&User{}).IsZero() {
		t.Fatal("user without id must be zero")
	}
	if (&User{ID: "u1"}).IsZero() {
		t.Fatal("user with id must not be zero")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", " A@B.COM ", "x@y"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false", e)
		}
	}
	invalid := []string{"", "@b.com", "a@", "a", "a@@b.com"}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true", e)
		}
	}
}

func TestOrderApprovalLink(t *testing.T) {
	ord := Order{Links: []Link{
		{Href: "https://paypal.test/self", Rel: "self"},
		{Href: "https://paypal.test/approve", Rel: "approve"},
	}}
	if ord.ApprovalLink() != "https://paypal.test/approve" {
		t.Fatalf("link = %q", ord.ApprovalLink())
	}
	if (Order{}).ApprovalLink() != "" {
		t.Fatal("no links must yield empty")
	}
}
