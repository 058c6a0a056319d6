package grant

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/sableauth/sable/internal/oauth/store"
)

func (s *Server) validateDeviceCode(ctx context.Context, base tokenContext) (deviceCodeContext, error) {
	if base.req.DeviceCode == "" {
		return deviceCodeContext{}, invalidRequest(`Missing required parameter "device_code".`)
	}

	device, err := s.store.DeviceCodes().GetDeviceCodeByID(ctx, base.req.DeviceCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return deviceCodeContext{}, invalidGrant("Invalid Device Code.")
		}
		return deviceCodeContext{}, err
	}

	return deviceCodeContext{tokenContext: base, device: device}, nil
}

func (s *Server) handleDeviceCode(ctx context.Context, c deviceCodeContext) (*TokenResponse, error) {
	now := s.now().UTC()

	// A poll from the wrong client permanently burns the code. The denial
	// is persisted before the error goes out, so even the right client can
	// never redeem it afterwards.
	if subtle.ConstantTimeCompare([]byte(c.device.ClientID), []byte(c.client.ID)) != 1 {
		denied := false
		c.device.Authorized = &denied
		if err := s.store.DeviceCodes().SaveDeviceCode(ctx, c.device); err != nil {
			return nil, err
		}
		return nil, accessDenied("Authorization denied by the Authorization Server.")
	}

	if !now.Before(c.device.ExpiresAt) {
		return nil, newError(CodeExpiredToken, "Expired Device Code.")
	}

	if c.device.Pending() {
		slow, err := s.store.DeviceCodes().ShouldSlowDown(ctx, c.device, now)
		if err != nil {
			return nil, err
		}
		if slow {
			return nil, newError(CodeSlowDown, "Polling too frequently.")
		}
		return nil, newError(CodeAuthorizationPending, "The Authorization Request is still pending.")
	}

	if c.device.Denied() {
		return nil, accessDenied("Authorization denied by the User.")
	}

	record, signed, err := s.issueAccessToken(ctx, c.client, c.device.UserID, c.device.Scopes)
	if err != nil {
		return nil, err
	}
	resp := s.tokenResponse(record, signed, c.device.Scopes)

	if clientMayRefresh(c.client) {
		refresh, err := s.mintRefreshToken(ctx, c.client, c.device.UserID, c.device.Scopes)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refresh
	}

	return resp, nil
}
