package transport

import (
	"context"
	"errors"
	"testing"

	"bazaar/internal/contact"
)

type stubCommander struct {
	raw string
	err error
}

func (s *stubCommander) Command(ctx context.Context, command string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.raw), nil
}

func TestContactResolver_ListContacts(t *testing.T) {
	r := NewContactResolver(&stubCommander{raw: `{
		"status": true,
		"response": {"contacts": [
			{"publickey": "0xA", "name": "alice"},
			{"publickey": " 0xB ", "name": " bob "},
			{"publickey": "0xA", "name": "alice-dup"},
			{"publickey": "", "name": "keyless"}
		]}
	}`})

	got, err := r.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts error = %v", err)
	}
	want := []contact.Recipient{
		{PublicKey: "0xA", Name: "alice"},
		{PublicKey: "0xB", Name: "bob"},
	}
	if len(got) != len(want) {
		t.Fatalf("contacts = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("contacts[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestContactResolver_Failures(t *testing.T) {
	cases := []struct {
		name string
		stub *stubCommander
	}{
		{"command error", &stubCommander{err: errors.New("down")}},
		{"not json", &stubCommander{raw: "nope"}},
		{"rejected", &stubCommander{raw: `{"status":false,"error":"no"}`}},
		{"missing response", &stubCommander{raw: `{"status":true}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewContactResolver(tc.stub)
			if _, err := r.ListContacts(context.Background()); !errors.Is(err, contact.ErrUnavailable) {
				t.Fatalf("error = %v, want ErrUnavailable", err)
			}
		})
	}
}
