package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

func TestIsGroupReadOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)

	tests := []struct {
		name  string
		group *models.Group
		want  bool
	}{
		{name: "nil group is writable", group: nil, want: false},
		{
			name:  "no active admin",
			group: &models.Group{HasActiveAdmin: false},
			want:  true,
		},
		{
			name:  "active admin, no legacy lock",
			group: &models.Group{HasActiveAdmin: true, ReadOnlyUntil: nil},
			want:  false,
		},
		{
			name:  "legacy lock in the future",
			group: &models.Group{HasActiveAdmin: true, ReadOnlyUntil: &future},
			want:  true,
		},
		{
			name:  "legacy lock in the past",
			group: &models.Group{HasActiveAdmin: true, ReadOnlyUntil: &past},
			want:  false,
		},
		{
			name: "no active admin wins over expired legacy lock",
			group: &models.Group{
				HasActiveAdmin: false,
				ReadOnlyUntil:  &past,
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isGroupReadOnlyAt(tt.group, now))
		})
	}
}

func TestHasAdminPermissions(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		member *models.GroupMember
		want   bool
	}{
		{name: "nil member", member: nil, want: false},
		{
			name:   "роль admin даёт полномочия без учёта подписки",
			member: &models.GroupMember{Role: models.RoleAdmin},
			want:   true,
		},
		{
			name: "unsubscribed adult inside trial window",
			member: &models.GroupMember{
				Role: models.RoleAdult,
				User: &models.User{
					IsSubscribed: false,
					CreatedAt:    now.AddDate(0, 0, -19),
				},
			},
			want: true,
		},
		{
			name: "unsubscribed adult outside trial window",
			member: &models.GroupMember{
				Role: models.RoleAdult,
				User: &models.User{
					IsSubscribed: false,
					CreatedAt:    now.AddDate(0, 0, -21),
				},
			},
			want: false,
		},
		{
			name: "subscribed adult gets no trial permissions",
			member: &models.GroupMember{
				Role: models.RoleAdult,
				User: &models.User{
					IsSubscribed: true,
					CreatedAt:    now.AddDate(0, 0, -5),
				},
			},
			want: false,
		},
		{
			name:   "member without joined user",
			member: &models.GroupMember{Role: models.RoleAdult},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasAdminPermissionsAt(tt.member, now))
		})
	}
}

func TestHasActiveSubscription(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	assert.False(t, hasActiveSubscriptionAt(nil, now))
	assert.False(t, hasActiveSubscriptionAt(&models.User{IsSubscribed: false}, now))
	assert.True(t, hasActiveSubscriptionAt(&models.User{IsSubscribed: true}, now))
	assert.True(t, hasActiveSubscriptionAt(&models.User{IsSubscribed: true, SubscriptionEndDate: &future}, now))
	assert.False(t, hasActiveSubscriptionAt(&models.User{IsSubscribed: true, SubscriptionEndDate: &past}, now))
}

func TestAnyOtherActiveAdmin(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)

	admins := []models.AdminState{
		{UserUID: "expiring", IsSubscribed: true},
		{UserUID: "lapsed", IsSubscribed: true, SubscriptionEndDate: &past},
		{UserUID: "inactive", IsSubscribed: false},
	}

	// Единственная активная подписка принадлежит самому завершаемому пользователю.
	assert.False(t, anyOtherActiveAdminAt(admins, "expiring", now))

	withCoAdmin := append(admins, models.AdminState{UserUID: "co-admin", IsSubscribed: true})
	assert.True(t, anyOtherActiveAdminAt(withCoAdmin, "expiring", now))
}

func TestReadOnlyError(t *testing.T) {
	reason := ReadOnlyError(&models.Group{HasActiveAdmin: false})
	assert.Equal(t, CodeGroupReadOnly, reason.Code)
	assert.NotEmpty(t, reason.Error)
	assert.NotEmpty(t, reason.Message)

	future := time.Now().Add(time.Hour)
	legacy := ReadOnlyError(&models.Group{HasActiveAdmin: true, ReadOnlyUntil: &future})
	assert.Equal(t, CodeGroupReadOnlyLegacy, legacy.Code)
}
