// Package discovery advertises the gateway on the LAN via mDNS so
// operator tooling can find it without a hostname/metadata loader of its
// own (a Non-goal spec.md explicitly excludes).
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the mDNS service type gateways advertise themselves
// under.
const ServiceType = "_plensor._tcp"

// Advertise registers instanceName on port and begins responding to mDNS
// queries in the background. It stops when ctx is canceled.
func Advertise(ctx context.Context, instanceName string, port int) error {
	service, err := dnssd.NewService(dnssd.Config{
		Name: instanceName,
		Type: ServiceType,
		Port: port,
	})
	if err != nil {
		return fmt.Errorf("discovery: new service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("discovery: new responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return fmt.Errorf("discovery: add service: %w", err)
	}

	go func() {
		if err := responder.Respond(ctx); err != nil && ctx.Err() == nil {
			fmt.Printf("discovery: responder stopped: %v\n", err)
		}
	}()
	return nil
}
