package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const userCacheTTL = 2 * time.Minute

type cachedUser struct {
	exists       bool
	isAdmin      bool
	allowedPaths []string
}

// UserCache remembers for a short while whether a JWT subject still exists,
// so that Identify does not hit the database on every request.
type UserCache struct {
	store *expirable.LRU[uint, cachedUser]
}

func NewUserCache() *UserCache {
	return &UserCache{
		store: expirable.NewLRU[uint, cachedUser](4096, nil, userCacheTTL),
	}
}

func (c *UserCache) Get(userID uint) (entry cachedUser, found bool) {
	return c.store.Get(userID)
}

func (c *UserCache) Set(userID uint, exists bool, isAdmin bool, allowedPaths []string) {
	c.store.Add(userID, cachedUser{
		exists:       exists,
		isAdmin:      isAdmin,
		allowedPaths: allowedPaths,
	})
}

// Invalidate forces a re-check (e.g. after password reset)
func (c *UserCache) Invalidate(userID uint) {
	logrus.WithField("module", "auth").Infof("Invalidate user: %v", userID)
	c.store.Remove(userID)
}
