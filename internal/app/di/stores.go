// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/gorm"

	attendanceadapters "attendance_backend/internal/feature/attendance/adapters"
	attendanceuc "attendance_backend/internal/feature/attendance/usecase"
	authadapters "attendance_backend/internal/feature/auth/adapters"
	authentity "attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/platform/cache"
	"attendance_backend/internal/platform/config"
	"attendance_backend/internal/platform/db"
	"attendance_backend/internal/platform/http/handler"
	platformmongo "attendance_backend/internal/platform/mongo"
	platformredis "attendance_backend/internal/platform/redis"
	"attendance_backend/internal/shared/clock"
)

// AttendanceStore は出勤記録リポジトリに一括削除を加えたものです（seedで使用）。
type AttendanceStore interface {
	attendanceuc.AttendanceRepository
	DeleteAll(ctx context.Context) error
}

// Stores は設定で選ばれたストレージのリポジトリ一式です。
type Stores struct {
	Users      cache.UserStore
	Attendance AttendanceStore

	// Checks は /healthz で疎通確認する依存先です。
	Checks  []handler.Check
	closers []func(context.Context) error
}

// Close は開いた接続をすべて閉じます。
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewStores はSTORE_DRIVERに応じてGORMまたはMongoDBのリポジトリを生成します。
// clkはMongoDBのcreatedAt/updatedAtに使われます。
func NewStores(ctx context.Context, cfg *config.Config, clk clock.Clock) (*Stores, error) {
	if cfg.Store == config.StoreMongo {
		return NewMongoStores(ctx, cfg.MongoURI, cfg.MongoDatabase, clk)
	}
	return NewSQLStores(cfg.DB)
}

// NewSQLStores はMySQL/PostgreSQL/SQLiteに接続し、必要ならマイグレーションします。
func NewSQLStores(cfg db.Config) (*Stores, error) {
	gdb, err := db.Open(cfg, &authentity.User{}, &attendanceadapters.AttendanceModel{})
	if err != nil {
		return nil, err
	}
	return NewSQLStoresFromDB(gdb)
}

// NewSQLStoresFromDB は既存のGORM接続からリポジトリを生成します。
func NewSQLStoresFromDB(gdb *gorm.DB) (*Stores, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	return &Stores{
		Users:      authadapters.NewUserSQL(gdb),
		Attendance: attendanceadapters.NewAttendanceSQL(gdb),
		Checks:     []handler.Check{{Name: "database", Ping: sqlDB.PingContext}},
		closers:    []func(context.Context) error{func(context.Context) error { return sqlDB.Close() }},
	}, nil
}

// NewMongoStores はMongoDBに接続し、一意インデックスを作成します。
func NewMongoStores(ctx context.Context, uri, database string, clk clock.Clock) (*Stores, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is required when STORE_DRIVER=mongodb")
	}
	client, mdb, err := platformmongo.Connect(ctx, uri, database)
	if err != nil {
		return nil, err
	}

	users := authadapters.NewUserMongo(mdb, clk)
	records := attendanceadapters.NewAttendanceMongo(mdb, clk)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := records.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Stores{
		Users:      users,
		Attendance: records,
		Checks: []handler.Check{{Name: "mongodb", Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}}},
		closers: []func(context.Context) error{client.Disconnect},
	}, nil
}

// NewRedis はRedisに接続します。未設定または接続失敗時はnilを返し、
// キャッシュとレート制限なしで動作を続けます。
func NewRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

// WithUserCache はユーザーリポジトリをRedisキャッシュでラップします。rdbがnilなら何もしません。
func (s *Stores) WithUserCache(rdb *redis.Client, ttl time.Duration) {
	if rdb == nil {
		return
	}
	s.Users = cache.NewCachingUserRepository(rdb, ttl, s.Users, "users")
	s.Checks = append(s.Checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}})
	s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
}
