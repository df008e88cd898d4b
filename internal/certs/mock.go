package certs

import "crypto/tls"

// MockManager returns a fixed certificate or error and counts calls.
type MockManager struct {
	Err   error
	Cert  tls.Certificate
	Calls int
}

// Certificate implements Manager.
func (m *MockManager) Certificate() (tls.Certificate, error) {
	m.Calls++
	if m.Err != nil {
		return tls.Certificate{}, m.Err
	}
	return m.Cert, nil
}

var (
	_ Manager = (*MockManager)(nil)
	_ Manager = (*FileManager)(nil)
)
