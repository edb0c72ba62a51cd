package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"dmdesk/internal/domain/dm"
)

func TestCheckConnection(t *testing.T) {
	cases := []struct {
		name      string
		profile   dm.SelfProfile
		connected bool
		display   string
		hasErr    bool
	}{
		{"connected", profileStub{account: dm.Account{ID: "1", Handle: "operator"}}, true, "@operator", false},
		{"no account", profileStub{err: dm.ErrAccountNotFound}, false, StatusNotConnected, false},
		{"empty handle", profileStub{account: dm.Account{ID: "1"}}, false, StatusNotConnected, false},
		{"transport error", profileStub{err: errors.New("401 Unauthorized")}, false, StatusConnectionError, true},
		{"no client", nil, false, StatusNotConnected, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := CheckConnection(context.Background(), tc.profile, &logRecorder{})
			assert.Equal(t, tc.connected, status.Connected)
			assert.Equal(t, tc.display, status.Display)
			assert.Equal(t, tc.hasErr, status.Err != nil)
		})
	}
}

type panickingProfile struct{}

func (panickingProfile) AuthenticatedAccount(context.Context) (dm.Account, error) {
	panic("boom")
}

func TestCheckConnectionRecoversPanics(t *testing.T) {
	var status ConnectionStatus
	assert.NotPanics(t, func() {
		status = CheckConnection(context.Background(), panickingProfile{}, nil)
	})
	assert.False(t, status.Connected)
	assert.Equal(t, StatusConnectionError, status.Display)
}
