// Package env resolves the identity and defaults of the local host.
package env

import (
	"github.com/denisbrodbeck/machineid"
)

// MachineID retrieves the unique ID identifying the machine. The raw
// machine ID is hashed per application and never leaves the host.
func MachineID() string {
	id, err := machineid.ProtectedID("robo-console")
	if err != nil {
		panic(err)
	}
	return id
}
