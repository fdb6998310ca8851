package cron

import (
	"context"
	"errors"
)

// ClaimSweepJobName is the registry and lock name of the stale claim sweep.
const ClaimSweepJobName = "claim_sweeper"

type claimSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ClaimSweepJob releases gateway claims left behind by interrupted requests.
type ClaimSweepJob struct {
	sweeper claimSweeper
}

func NewClaimSweepJob(sweeper claimSweeper) (*ClaimSweepJob, error) {
	if sweeper == nil {
		return nil, errors.New("claim sweeper required")
	}
	return &ClaimSweepJob{sweeper: sweeper}, nil
}

func (j *ClaimSweepJob) Name() string { return ClaimSweepJobName }

func (j *ClaimSweepJob) Run(ctx context.Context) (int, error) {
	return j.sweeper.Sweep(ctx)
}
