package amnet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vscpa/backend/internal/domain/integration"
)

func TestDisabled_EveryCallReportsNotConfigured(t *testing.T) {
	ctx := context.Background()
	var c integration.Client = Disabled{}

	_, err := c.GetPerson(ctx, "1001")
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	_, err = c.CreatePerson(ctx, &integration.Person{})
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	assert.ErrorIs(t, c.UpdatePerson(ctx, &integration.Person{}), integration.ErrAMNetNotConfigured)

	_, err = c.GetDues(ctx, "1001")
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	_, err = c.GetLegislativeContacts(ctx, "1001")
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	_, err = c.GetFirmPeerReview(ctx, "F100")
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	_, err = c.GetFirmChanges(ctx, time.Now())
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)

	_, err = c.GetList(ctx, "designations")
	assert.ErrorIs(t, err, integration.ErrAMNetNotConfigured)
}
