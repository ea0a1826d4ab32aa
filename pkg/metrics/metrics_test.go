package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuthentication(t *testing.T) {
	AuthenticationsTotal.Reset()

	RecordAuthentication(true)
	RecordAuthentication(true)
	RecordAuthentication(false)
	RecordAuthenticationError()

	assert.Equal(t, 2.0, testutil.ToFloat64(AuthenticationsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthenticationsTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthenticationsTotal.WithLabelValues(ResultError)))
	assert.Equal(t, 3, testutil.CollectAndCount(AuthenticationsTotal))
}

func TestRecordAdministration(t *testing.T) {
	EnrollmentsTotal.Reset()
	RevocationsTotal.Reset()
	AdminLoginsTotal.Reset()

	RecordEnrollment(true)
	RecordRevocation(false)
	RecordAdminLogin(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(EnrollmentsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(RevocationsTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(AdminLoginsTotal.WithLabelValues(ResultSuccess)))
}

func TestRecordBroadcast(t *testing.T) {
	before := testutil.ToFloat64(BroadcastsTotal)
	RecordBroadcast()
	assert.Equal(t, before+1, testutil.ToFloat64(BroadcastsTotal))
}

func TestRecordRejected(t *testing.T) {
	RejectedTotal.Reset()

	RecordRejected("rate_limited")
	RecordRejected("rate_limited")

	assert.Equal(t, 2.0, testutil.ToFloat64(RejectedTotal.WithLabelValues("rate_limited")))
}

func TestSetEpoch(t *testing.T) {
	SetEpoch(3, 47)

	assert.Equal(t, 3.0, testutil.ToFloat64(Epoch))
	assert.Equal(t, 47.0, testutil.ToFloat64(RemainingRevocations))
}
