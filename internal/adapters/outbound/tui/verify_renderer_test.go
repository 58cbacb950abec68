package tui_test

import (
	"testing"

	"github.com/openkraft/sdkweave/internal/adapters/outbound/tui"
	"github.com/openkraft/sdkweave/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderVerify_Converged(t *testing.T) {
	output := tui.RenderVerify(&domain.VerifyReport{
		Initial:   []domain.ApplyResult{{ChangeID: "a", Applied: true, Message: domain.MsgApplied}},
		Converged: true,
	})
	assert.Contains(t, output, "converged")
	assert.Contains(t, output, "Initial apply")
	assert.NotContains(t, output, "Still pending")
}

func TestRenderVerify_ShowsAttemptsAndRemaining(t *testing.T) {
	failed := []domain.ApplyResult{{ChangeID: "stuck", Message: domain.MsgPatchFailed}}
	output := tui.RenderVerify(&domain.VerifyReport{
		Initial: failed,
		Attempts: []domain.VerifyAttempt{
			{Attempt: 1, Remaining: []string{"stuck"}, Results: failed},
			{Attempt: 2, Remaining: []string{"stuck"}, Results: failed},
		},
		Remaining: []string{"stuck"},
	})
	assert.Contains(t, output, "1 remaining")
	assert.Contains(t, output, "Attempt 1")
	assert.Contains(t, output, "Attempt 2")
	assert.Contains(t, output, "Still pending")
	assert.Contains(t, output, "stuck")
}
