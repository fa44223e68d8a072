// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"attendance_backend/internal/feature/auth/domain/entity"
)

// UserStore is the full set of user operations the decorator forwards.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error)
	FindByEmployeeID(ctx context.Context, code string) (*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	DeleteAll(ctx context.Context) error
}

// CachingUserRepository decorates a UserStore with a Redis read-through cache
// for the directory lookups used by attendance views (FindByIDs, ListByRole).
// Credential lookups (FindByEmail, FindByID) always hit the store, and cached
// entries never carry the password hash.
type CachingUserRepository struct {
	inner     UserStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingUserRepository decorates a UserStore with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching entirely.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner UserStore, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// directoryEntry is the cached form of a user, without the password hash.
type directoryEntry struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	EmployeeID string      `json:"employeeId"`
	Department string      `json:"department"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func toEntry(u entity.User) directoryEntry {
	return directoryEntry{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		EmployeeID: u.EmployeeID,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (e directoryEntry) user() entity.User {
	return entity.User{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Role:       e.Role,
		EmployeeID: e.EmployeeID,
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// Create stores the user and invalidates the cached listing for its role.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	_ = c.rdb.Del(ctx, c.roleKey(u.Role)).Err() // Best effort
	return nil
}

// Update saves the user and invalidates its entry and its role listing.
func (c *CachingUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	_ = c.rdb.Del(ctx, c.idKey(u.ID), c.roleKey(u.Role)).Err() // Best effort
	return nil
}

// DeleteAll removes every user and drops the whole namespace.
func (c *CachingUserRepository) DeleteAll(ctx context.Context) error {
	if err := c.inner.DeleteAll(ctx); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// FindByEmail always reads the store.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID always reads the store so profile updates see the password hash.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return c.inner.FindByID(ctx, id)
}

// FindByEmployeeID always reads the store.
func (c *CachingUserRepository) FindByEmployeeID(ctx context.Context, code string) (*entity.User, error) {
	return c.inner.FindByEmployeeID(ctx, code)
}

// FindByIDs reads per-id entries with a single MGET and fetches only the
// misses from the store. Results follow the order of ids; unknown ids are skipped.
func (c *CachingUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil || len(ids) == 0 {
		return c.inner.FindByIDs(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.idKey(id)
	}

	found := make(map[uint]entity.User, len(ids))
	var missing []uint
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		missing = ids
	} else {
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var e directoryEntry
			if err := json.Unmarshal([]byte(s), &e); err != nil {
				_ = c.rdb.Del(ctx, keys[i]).Err() // Delete corrupted cache entry
				missing = append(missing, ids[i])
				continue
			}
			found[e.ID] = e.user()
		}
	}

	if len(missing) > 0 {
		fresh, err := c.inner.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range fresh {
			entry := toEntry(u)
			found[u.ID] = entry.user()
			if b, err := json.Marshal(entry); err == nil {
				_ = c.rdb.Set(ctx, c.idKey(u.ID), b, c.ttl).Err()
			}
		}
	}

	out := make([]entity.User, 0, len(found))
	for _, id := range ids {
		if u, ok := found[id]; ok {
			out = append(out, u)
			delete(found, id)
		}
	}
	return out, nil
}

// ListByRole retrieves the role listing, checking cache first then falling back to the store.
func (c *CachingUserRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.ListByRole(ctx, role)
	}

	key := c.roleKey(role)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil && len(b) > 0 {
		var entries []directoryEntry
		if err := json.Unmarshal(b, &entries); err == nil {
			out := make([]entity.User, 0, len(entries))
			for _, e := range entries {
				out = append(out, e.user())
			}
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return c.inner.ListByRole(ctx, role)
	}

	// 2) Fallback to the store
	users, err := c.inner.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	entries := make([]directoryEntry, 0, len(users))
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		e := toEntry(u)
		entries = append(entries, e)
		out = append(out, e.user())
	}
	if b, err := json.Marshal(entries); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingUserRepository) idKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

func (c *CachingUserRepository) roleKey(role entity.Role) string {
	return fmt.Sprintf("%s:role:%s", c.namespace, safe(string(role)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUserRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
