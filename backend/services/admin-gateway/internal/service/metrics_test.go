package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPaymentMetrics(t *testing.T) {
	m := NewPaymentMetrics(prometheus.NewRegistry())

	m.PaymentRecorded()
	m.PaymentRejected("over_limit")
	m.PaymentRejected("over_limit")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.recorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejected.WithLabelValues("over_limit")))
}
