package worker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Revaluer recomputes an account's portfolio value from current prices
type Revaluer interface {
	Revalue(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// RevalueResult is the outcome of one RevalueJob
type RevalueResult struct {
	AccountID string
	Value     decimal.Decimal
	Err       error
}

// RevalueJob revalues one account's portfolio and reports the outcome
type RevalueJob struct {
	accountID string
	revaluer  Revaluer
	results   chan<- RevalueResult
}

// NewRevalueJob creates a revaluation job. results may be nil; when set it must
// have room for the result or a reader, since Execute blocks on the send.
func NewRevalueJob(accountID string, revaluer Revaluer, results chan<- RevalueResult) *RevalueJob {
	return &RevalueJob{accountID: accountID, revaluer: revaluer, results: results}
}

// Execute runs the revaluation
func (j *RevalueJob) Execute(ctx context.Context) error {
	value, err := j.revaluer.Revalue(ctx, j.accountID)
	if err != nil {
		err = fmt.Errorf("revalue failed: %w", err)
	}
	if j.results != nil {
		j.results <- RevalueResult{AccountID: j.accountID, Value: value, Err: err}
	}
	return err
}

// AccountID returns the account this job revalues
func (j *RevalueJob) AccountID() string {
	return j.accountID
}

// Description returns a human-readable description of the job
func (j *RevalueJob) Description() string {
	return "portfolio revaluation"
}
