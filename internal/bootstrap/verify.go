package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// runVerification waits out the settling delay, queries cluster membership
// through the admin credentials, and compares the observed node count to
// the expected fleet size. Any mismatch is a warning, never a failure:
// convergence may simply be slow.
func (o *Orchestrator) runVerification(ctx context.Context) {
	if o.artifacts.AdminKubeconfig == "" {
		o.report.Warn(WarnVerificationSkipped, "no admin credentials available to query the cluster")
		return
	}

	o.log.WithField("settle_delay", o.settleDelay).Info("waiting before verification")
	select {
	case <-ctx.Done():
		o.report.Warn(WarnVerificationSkipped, fmt.Sprintf("verification aborted: %v", ctx.Err()))
		return
	case <-time.After(o.settleDelay):
	}

	nodes, err := o.listNodes(ctx, []byte(o.artifacts.AdminKubeconfig))
	if err != nil {
		o.report.Warn(WarnVerificationSkipped, fmt.Sprintf("cluster query failed: %v", err))
		return
	}

	o.report.Nodes = nodes
	o.report.ObservedNodes = len(nodes)
	if o.report.ObservedNodes != o.report.ExpectedNodes {
		o.report.Warn(WarnVerificationMismatch,
			fmt.Sprintf("expected %d nodes, observed %d", o.report.ExpectedNodes, o.report.ObservedNodes))
	}

	o.log.WithFields(logrus.Fields{
		"expected": o.report.ExpectedNodes,
		"observed": o.report.ObservedNodes,
	}).Info("verification finished")
}
