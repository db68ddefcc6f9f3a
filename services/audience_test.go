package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialclient/gateway"
	"socialclient/models"
	"socialclient/services"
)

func loadedResolver(t *testing.T, gw *fakeGateway) *services.AudienceResolver {
	t.Helper()
	if gw.fetchBubbles == nil {
		gw.fetchBubbles = func() ([]models.Bubble, error) {
			return []models.Bubble{
				{ID: 1, Name: "Neighborhood"},
				{ID: 2, Name: "Climbing crew"},
				{ID: 3, Name: "Board games"},
			}, nil
		}
	}
	if gw.fetchGroups == nil {
		gw.fetchGroups = func() ([]models.Group, error) { return nil, nil }
	}
	r := services.NewAudienceResolver(gw)
	require.NoError(t, r.Load(context.Background()))
	return r
}

func TestDefaultSelectionIsPublic(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})
	require.True(t, r.IsPublic())

	sel := r.Confirm()
	assert.True(t, sel.Public)
	assert.Equal(t, []int64{1, 2, 3}, sel.BubbleIDs)
	assert.Empty(t, sel.MemberIDs)
	assert.Empty(t, sel.GroupIDs)
}

func TestDeselectingBubbleDropsPublic(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})

	require.NoError(t, r.ToggleBubble(2))
	assert.False(t, r.IsPublic())

	// re-selecting restores the public state: it is derived, never stored
	require.NoError(t, r.ToggleBubble(2))
	assert.True(t, r.IsPublic())
}

func TestIndividualsDropPublicEvenWithAllBubbles(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})

	r.AddMember(42)
	assert.False(t, r.IsPublic())

	r.RemoveMember(42)
	assert.True(t, r.IsPublic())
}

func TestConfirmIsDetachedFromLaterEdits(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})
	sel := r.Confirm()

	require.NoError(t, r.ToggleBubble(1))
	r.AddMember(42)

	assert.True(t, sel.Public)
	assert.Equal(t, []int64{1, 2, 3}, sel.BubbleIDs)
	assert.Empty(t, sel.MemberIDs)
}

func TestToggleUnknownBubble(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})
	require.Error(t, r.ToggleBubble(99))
	require.Error(t, r.ToggleGroup(99))
}

func TestCreateGroupFailureLeavesSelectionUntouched(t *testing.T) {
	gw := &fakeGateway{
		createGroup: func(string, []int64) (*models.Group, error) {
			return nil, fmt.Errorf("%w: timeout", gateway.ErrUnreachable)
		},
	}
	r := loadedResolver(t, gw)
	r.AddMember(5)
	r.AddMember(6)

	_, err := r.CreateGroup(context.Background(), "Close friends")
	require.Error(t, err)

	sel := r.Confirm()
	assert.Equal(t, []int64{5, 6}, sel.MemberIDs)
	assert.Empty(t, r.Groups())
}

func TestCreateGroupSuccessIsNotAutoSelected(t *testing.T) {
	gw := &fakeGateway{
		createGroup: func(name string, memberIDs []int64) (*models.Group, error) {
			return &models.Group{ID: 10, Name: name, MemberIDs: memberIDs}, nil
		},
	}
	r := loadedResolver(t, gw)
	r.AddMember(5)

	group, err := r.CreateGroup(context.Background(), "Close friends")
	require.NoError(t, err)
	assert.EqualValues(t, 10, group.ID)

	groups := r.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Close friends", groups[0].Name)

	sel := r.Confirm()
	assert.Empty(t, sel.GroupIDs)
	assert.Equal(t, []int64{5}, sel.MemberIDs)
}

func TestCreateGroupRequiresMembers(t *testing.T) {
	r := loadedResolver(t, &fakeGateway{})
	_, err := r.CreateGroup(context.Background(), "empty")
	require.Error(t, err)
}

func TestLoadFailurePropagates(t *testing.T) {
	gw := &fakeGateway{
		fetchBubbles: func() ([]models.Bubble, error) {
			return nil, fmt.Errorf("%w: down", gateway.ErrUnreachable)
		},
	}
	r := services.NewAudienceResolver(gw)
	err := r.Load(context.Background())
	require.ErrorIs(t, err, gateway.ErrUnreachable)
	assert.False(t, r.IsPublic())
}
