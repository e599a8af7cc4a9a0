package service

import (
	"context"
	"testing"

	"skillnet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_CreatesPendingRow(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")

	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, f.Accepted)
	assert.Equal(t, a.ID, f.UserID)
	assert.Equal(t, b.ID, f.FriendID)
	require.NotNil(t, f.User)
	assert.Empty(t, f.User.PasswordHash)

	assert.Equal(t, []notification{{userID: b.ID, event: EventFriendshipRequested}}, fx.notifier.events)
	assert.Contains(t, fx.counter.invalidated, b.ID)
}

func TestRequest_Errors(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")

	_, err := fx.ledger.Request(ctx, a.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.ledger.Request(ctx, 999, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.ledger.RequestByUsername(ctx, a.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fx.ledger.Request(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = fx.ledger.RequestByUsername(ctx, a.ID, "b")
	require.NoError(t, err)

	_, err = fx.ledger.Request(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrConflict, "duplicate pending request")
	_, err = fx.ledger.Request(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrConflict, "reverse request while pending")

	assert.EqualValues(t, 1, fx.rowCount(t))
}

func TestAccept_CreatesAcceptedMirror(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	accepted, err := fx.ledger.Accept(ctx, f.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.Equal(t, f.ID, accepted.ID)

	mirror, err := fx.ledger.FindByUserAndFriend(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, mirror.Accepted)
	assert.NotEqual(t, f.ID, mirror.ID)
	assert.EqualValues(t, 2, fx.rowCount(t))

	assert.Contains(t, fx.notifier.events, notification{userID: a.ID, event: EventFriendshipAccepted})
}

func TestAccept_ForbiddenLeavesRowUnchanged(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	c := register(t, fx.users, "c")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	for _, actor := range []uint{a.ID, c.ID} {
		_, err = fx.ledger.Accept(ctx, f.ID, actor)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	got, err := fx.ledger.FindOne(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, got.Accepted)
	assert.EqualValues(t, 1, fx.rowCount(t))
}

func TestAccept_AlreadyAcceptedConflicts(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = fx.ledger.Accept(ctx, f.ID, b.ID)
	require.NoError(t, err)

	_, err = fx.ledger.Accept(ctx, f.ID, b.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
	assert.EqualValues(t, 2, fx.rowCount(t))
}

func TestAccept_NotFound(t *testing.T) {
	fx := newLedger(t)
	_, err := fx.ledger.Accept(context.Background(), 123, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccept_ReusesPendingReverseRow(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	// 两个方向同时存在待处理请求（例如并发发起时）
	reverse := &model.Friendship{UserID: b.ID, FriendID: a.ID}
	require.NoError(t, fx.db.Create(reverse).Error)

	_, err = fx.ledger.Accept(ctx, f.ID, b.ID)
	require.NoError(t, err)

	mirror, err := fx.ledger.FindByUserAndFriend(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, reverse.ID, mirror.ID)
	assert.True(t, mirror.Accepted)
	assert.EqualValues(t, 2, fx.rowCount(t))
}

func TestRemove_PendingDeletesOneRow(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	c := register(t, fx.users, "c")
	keep, err := fx.ledger.Request(ctx, c.ID, b.ID)
	require.NoError(t, err)
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, fx.ledger.Remove(ctx, f.ID, b.ID))

	assert.EqualValues(t, 1, fx.rowCount(t))
	_, err = fx.ledger.FindOne(ctx, keep.ID)
	assert.NoError(t, err)
	_, err = fx.ledger.FindOne(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, fx.notifier.events, notification{userID: a.ID, event: EventFriendshipRemoved})
}

func TestRemove_AcceptedDeletesBothDirections(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = fx.ledger.Accept(ctx, f.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, fx.ledger.Remove(ctx, f.ID, a.ID))

	_, err = fx.ledger.FindByUserAndFriend(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.ledger.FindByUserAndFriend(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, fx.rowCount(t))
}

func TestRemove_ToleratesMissingMirror(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	broken := &model.Friendship{UserID: a.ID, FriendID: b.ID, Accepted: true}
	require.NoError(t, fx.db.Create(broken).Error)

	require.NoError(t, fx.ledger.Remove(ctx, broken.ID, b.ID))
	assert.EqualValues(t, 0, fx.rowCount(t))
}

func TestRemove_Errors(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	c := register(t, fx.users, "c")
	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, fx.ledger.Remove(ctx, f.ID, c.ID), ErrForbidden)
	assert.ErrorIs(t, fx.ledger.Remove(ctx, 999, a.ID), ErrNotFound)
	assert.EqualValues(t, 1, fx.rowCount(t))
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")

	f, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, f.ID)
	assert.False(t, f.Accepted)

	accepted, err := fx.ledger.Accept(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)

	mirror, err := fx.ledger.FindOne(ctx, 2)
	require.NoError(t, err)
	assert.True(t, mirror.Accepted)
	assert.Equal(t, b.ID, mirror.UserID)
	assert.Equal(t, a.ID, mirror.FriendID)

	require.NoError(t, fx.ledger.Remove(ctx, 1, a.ID))

	_, err = fx.ledger.FindOne(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fx.ledger.FindOne(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListsAndPendingCount(t *testing.T) {
	ctx := context.Background()
	fx := newLedger(t)
	a := register(t, fx.users, "a")
	b := register(t, fx.users, "b")
	c := register(t, fx.users, "c")

	ab, err := fx.ledger.Request(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = fx.ledger.Request(ctx, c.ID, b.ID)
	require.NoError(t, err)

	pending, err := fx.ledger.ListPending(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	count, err := fx.ledger.PendingCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.EqualValues(t, 2, fx.counter.counts[b.ID], "count cached after miss")

	_, err = fx.ledger.Accept(ctx, ab.ID, b.ID)
	require.NoError(t, err)
	_, cached := fx.counter.counts[b.ID]
	assert.False(t, cached, "accept invalidates cache")

	count, err = fx.ledger.PendingCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	friends, err := fx.ledger.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].FriendID)

	friends, err = fx.ledger.ListFriends(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, a.ID, friends[0].FriendID)
}
