package api

import (
	"context"
	"encoding/json"

	"netmonlabs/netmon/internal/domain"
)

// Backend paths.
const (
	PathRegister  = "/register"
	PathLogin     = "/login"
	PathTelemetry = "/operator/telemetry"
)

// Register creates an account. The backend's success body is returned
// undecoded since its shape is not part of the contract.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Post(ctx, PathRegister, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.Post(ctx, PathLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Telemetry fetches the current snapshot of device readings.
func (c *Client) Telemetry(ctx context.Context) ([]domain.TelemetryRecord, error) {
	var out []domain.TelemetryRecord
	if err := c.Get(ctx, PathTelemetry, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.TelemetryRecord{}
	}
	return out, nil
}
