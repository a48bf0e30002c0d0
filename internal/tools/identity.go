package tools

import (
	"fmt"
	"os/user"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	identityCacheSize = 256
	identityCacheTTL  = 5 * time.Minute
)

// UserResolver maps uids to accounts through the system user database.
// Lookups are cached briefly; account changes show up after the TTL.
type UserResolver struct {
	cache  *expirable.LRU[uint32, *user.User]
	lookup func(uid string) (*user.User, error)
}

func NewUserResolver() *UserResolver {
	return &UserResolver{
		cache:  expirable.NewLRU[uint32, *user.User](identityCacheSize, nil, identityCacheTTL),
		lookup: user.LookupId,
	}
}

func (r *UserResolver) resolve(uid uint32) (*user.User, error) {
	if u, ok := r.cache.Get(uid); ok {
		return u, nil
	}
	u, err := r.lookup(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return nil, fmt.Errorf("looking up uid %d: %w", uid, err)
	}
	r.cache.Add(uid, u)
	return u, nil
}

func (r *UserResolver) Username(uid uint32) (string, error) {
	u, err := r.resolve(uid)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

func (r *UserResolver) HomeDir(uid uint32) (string, error) {
	u, err := r.resolve(uid)
	if err != nil {
		return "", err
	}
	if u.HomeDir == "" {
		return "", fmt.Errorf("uid %d has no home directory", uid)
	}
	return u.HomeDir, nil
}
