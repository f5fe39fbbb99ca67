package host

import (
	"context"
	"errors"
	"testing"
)

type fakeCommander struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeCommander) Command(ctx context.Context, command string) ([]byte, error) {
	f.calls = append(f.calls, command)
	if err := f.errs[command]; err != nil {
		return nil, err
	}
	return []byte(f.responses[command]), nil
}

func workingCommander() *fakeCommander {
	return &fakeCommander{
		responses: map[string]string{
			"maxima":     `{"status":true,"response":{"name":"mika","publickey":"0xPK1"}}`,
			"getaddress": `{"status":true,"response":{"miniaddress":"0xWALLET"}}`,
		},
		errs: map[string]error{},
	}
}

func TestResolve(t *testing.T) {
	cmd := workingCommander()
	r := NewResolver(cmd)

	id, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	want := Identity{Name: "mika", PublicKey: "0xPK1", WalletAddress: "0xWALLET"}
	if id != want {
		t.Fatalf("identity = %+v, want %+v", id, want)
	}
}

func TestResolve_CachesIdentity(t *testing.T) {
	cmd := workingCommander()
	r := NewResolver(cmd)
	ctx := context.Background()

	if _, err := r.Resolve(ctx); err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if _, err := r.Resolve(ctx); err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if len(cmd.calls) != 2 {
		t.Fatalf("commands = %d, want 2 (cached on second resolve)", len(cmd.calls))
	}
}

func TestResolve_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fakeCommander)
	}{
		{"identity command error", func(f *fakeCommander) { f.errs["maxima"] = errors.New("down") }},
		{"identity rejected", func(f *fakeCommander) { f.responses["maxima"] = `{"status":false,"error":"no"}` }},
		{"identity not json", func(f *fakeCommander) { f.responses["maxima"] = `nope` }},
		{"missing public key", func(f *fakeCommander) { f.responses["maxima"] = `{"status":true,"response":{"name":"mika"}}` }},
		{"address command error", func(f *fakeCommander) { f.errs["getaddress"] = errors.New("down") }},
		{"address rejected", func(f *fakeCommander) { f.responses["getaddress"] = `{"status":false}` }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := workingCommander()
			tc.mutate(cmd)
			r := NewResolver(cmd)
			if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Resolve error = %v, want ErrUnavailable", err)
			}
		})
	}
}
