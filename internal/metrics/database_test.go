package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordQueryClassifiesErrors(t *testing.T) {
	tests := []struct {
		err       error
		errorType string
	}{
		{errors.New("syntax error"), "query_error"},
		{fmt.Errorf("load: %w", context.Canceled), "canceled"},
		{context.DeadlineExceeded, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			counter := DBErrors.WithLabelValues("test_op", tt.errorType)
			before := testutil.ToFloat64(counter)

			RecordQuery("test_op", time.Now(), tt.err)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordQuerySuccessCountsNoError(t *testing.T) {
	before := testutil.CollectAndCount(DBErrors)
	RecordQuery("test_ok", time.Now(), nil)
	assert.Equal(t, before, testutil.CollectAndCount(DBErrors))
}
