package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/favicon.ico", "/other"},
		{"/api/v1/activities", "/api/v1/activities"},
		{"/api/v1/activities/42", "/api/v1/activities/:id"},
		{"/api/v1/registrations/7/status", "/api/v1/registrations/:id/status"},
		{"/api/v1/auth/login/3", "/api/v1/auth/login/:id"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizePath(tt.path))
		})
	}
}

func TestRecordStoreOperation(t *testing.T) {
	counter := StoreOperationsTotal.WithLabelValues("createActivity", "error")
	before := testutil.ToFloat64(counter)

	RecordStoreOperation("createActivity", 0.01, assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
