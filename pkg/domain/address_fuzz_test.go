package domain

import "testing"

// FuzzParseAddress checks that parsing never panics and that every accepted
// address is a fixed point of parsing.
func FuzzParseAddress(f *testing.F) {
	f.Add("")
	f.Add("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	f.Add("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	f.Add("0x")
	f.Add("'; DROP TABLE snapshots;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		addr, err := ParseAddress(input)
		if err != nil {
			return
		}
		again, err := ParseAddress(addr.String())
		if err != nil {
			t.Fatalf("canonical address rejected: %v", err)
		}
		if again != addr {
			t.Fatalf("canonical form not stable: %s != %s", again, addr)
		}
	})
}
