package models

import (
	"net"
	"strconv"
	"time"
)

// TargetAddress is the network address of a project's running container.
// An entry exists in the address registry only while the project is ready
// to serve traffic.
type TargetAddress struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// HostPort returns the address in host:port form, suitable for dialing.
func (t TargetAddress) HostPort() string {
	return net.JoinHostPort(t.IP, strconv.Itoa(t.Port))
}

// ErrorKind classifies a terminal project error.
type ErrorKind string

const (
	// ErrorKindInternal covers backend failures, unexpected response
	// shapes and parse failures.
	ErrorKindInternal ErrorKind = "internal"

	// ErrorKindNoNetwork means the container could not be attached to
	// the shared project network.
	ErrorKindNoNetwork ErrorKind = "no_network"

	// ErrorKindTimeout means the container exhausted its start or
	// become-healthy budget.
	ErrorKindTimeout ErrorKind = "timeout"
)

// ProjectError carries the classification and message of a project stuck
// in the errored state. It is surfaced via the control-plane API for
// manual retry or deletion.
type ProjectError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ProjectError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// ProjectStatus is the control-plane view of a project.
type ProjectStatus struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	AccountID     string         `json:"account_id,omitempty"`
	State         string         `json:"state"`
	Error         *ProjectError  `json:"error,omitempty"`
	Address       *TargetAddress `json:"address,omitempty"`
	IdleMinutes   uint           `json:"idle_minutes"`
	RecreateCount int            `json:"recreate_count"`
	ContainerID   string         `json:"container_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CreateProjectRequest is the payload for creating a new project.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,hostname_rfc1123,min=3,max=40"`
	IdleMinutes uint   `json:"idle_minutes" validate:"max=1440"`
}

// CertificateRequest is the payload the ACME collaborator posts when a
// certificate is issued or renewed for a hostname.
type CertificateRequest struct {
	Hostname string `json:"hostname" validate:"required,fqdn"`
	CertPEM  string `json:"cert_pem" validate:"required"`
	KeyPEM   string `json:"key_pem" validate:"required"`
}
