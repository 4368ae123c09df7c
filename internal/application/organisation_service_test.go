package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/julee/knowledge-service/internal/domain/repository"
)

func newOrgFixture() (*OrganisationService, *fakeOrgRepo, *capturePublisher) {
	orgs := newFakeOrgRepo()
	events := &capturePublisher{}
	return NewOrganisationService(orgs, testLogger(), events), orgs, events
}

func TestOrganisationServiceCreate(t *testing.T) {
	svc, _, events := newOrgFixture()

	o, err := svc.Create(context.Background(), CreateOrganisationInput{Name: "Acme", Description: "widgets"})
	require.NoError(t, err)
	require.NotEmpty(t, o.ID)
	assert.Equal(t, "Acme", o.Name)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "widgets", got.Description)

	require.Equal(t, []string{EventOrganisationCreated}, events.types())
}

func TestOrganisationServiceCreateRequiresName(t *testing.T) {
	svc, orgs, _ := newOrgFixture()

	_, err := svc.Create(context.Background(), CreateOrganisationInput{Name: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	all, err := orgs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrganisationServiceCreateDuplicateName(t *testing.T) {
	svc, _, _ := newOrgFixture()

	_, err := svc.Create(context.Background(), CreateOrganisationInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrganisationInput{Name: "Acme"})
	require.ErrorIs(t, err, repo.ErrConflict)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrganisationServiceGetMissing(t *testing.T) {
	svc, _, _ := newOrgFixture()

	_, err := svc.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrganisationServiceListInsertionOrder(t *testing.T) {
	svc, _, _ := newOrgFixture()

	for _, name := range []string{"Zeta", "Acme", "Mid"} {
		_, err := svc.Create(context.Background(), CreateOrganisationInput{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zeta", all[0].Name)
	assert.Equal(t, "Acme", all[1].Name)
	assert.Equal(t, "Mid", all[2].Name)
}
