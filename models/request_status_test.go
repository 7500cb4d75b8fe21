package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestStatus(t *testing.T) {
	t.Run(`terminal states`, func(t *testing.T) {
		require.False(t, RequestStatusPending.Terminal())
		require.True(t, RequestStatusApproved.Terminal())
		require.True(t, RequestStatusDenied.Terminal())
	})

	t.Run(`only pending accepts a decision`, func(t *testing.T) {
		require.True(t, RequestStatusPending.AllowDecide())
		require.False(t, RequestStatusApproved.AllowDecide())
		require.False(t, RequestStatusDenied.AllowDecide())
	})

	t.Run(`validity`, func(t *testing.T) {
		require.True(t, RequestStatusPending.Valid())
		require.False(t, RequestStatus("cancelled").Valid())
	})
}
