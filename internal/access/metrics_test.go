package access

import (
	"context"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/pressgate/internal/catalog"
)

func counterValue(t *testing.T, outcome, reason string) float64 {
	t.Helper()
	c, err := accessDecisions.GetMetricWithLabelValues(outcome, reason)
	require.NoError(t, err)
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.Counter.GetValue()
}

func TestMetrics_DecisionCounters(t *testing.T) {
	accessDecisions.Reset()
	f := newFixture()
	ctx := context.Background()

	d, err := f.mgr.Verify(ctx, Request{UserID: "user1", ContentID: "article-1", Level: catalog.LevelPublic})
	require.NoError(t, err)
	require.True(t, d.Granted)

	d, err = f.mgr.Verify(ctx, Request{UserID: "user1", ContentID: "article-1", Level: catalog.LevelPremium})
	require.NoError(t, err)
	require.False(t, d.Granted)

	require.Equal(t, 1.0, counterValue(t, "granted", ""))
	require.Equal(t, 1.0, counterValue(t, "denied", ReasonTierInsufficient))
}
