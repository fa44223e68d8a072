package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/feature/auth/usecase"
	platformmongo "attendance_backend/internal/platform/mongo"
	"attendance_backend/internal/shared/clock"
)

const usersCollection = "users"

// userDocument はusersコレクションのドキュメント形式です。
type userDocument struct {
	ID         uint      `bson:"_id"`
	Name       string    `bson:"name"`
	Email      string    `bson:"email"`
	Password   string    `bson:"password"`
	Role       string    `bson:"role"`
	EmployeeID string    `bson:"employeeId"`
	Department string    `bson:"department"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (d userDocument) toEntity() entity.User {
	return entity.User{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Password:   d.Password,
		Role:       entity.Role(d.Role),
		EmployeeID: d.EmployeeID,
		Department: d.Department,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// userMongo はUserRepositoryインターフェースのMongoDB実装です。
// IDはcountersコレクションの連番で採番し、SQL実装と同じ数値IDを使います。
type userMongo struct {
	db   *mongo.Database
	coll *mongo.Collection
	now  func() time.Time
}

var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo はuserMongoの新しいインスタンスを生成します。clkがnilの場合はシステム時計です。
func NewUserMongo(db *mongo.Database, clk clock.Clock) *userMongo {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &userMongo{db: db, coll: db.Collection(usersCollection), now: clk.Now}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "employeeId", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
}

// EnsureIndexes はメールアドレスのユニークインデックスと検索用インデックスを作成します。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, userIndexes())
	return err
}

// Create はユーザーを挿入します。メール重複はusecase.ErrEmailAlreadyExistsになります。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	id, err := platformmongo.NextSequence(ctx, r.db, usersCollection)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	doc := userDocument{
		ID:         id,
		Name:       u.Name,
		Email:      u.Email,
		Password:   u.Password,
		Role:       string(u.Role),
		EmployeeID: u.EmployeeID,
		Department: u.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	u := doc.toEntity()
	return &u, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID はIDでユーザーを取得します。
func (r *userMongo) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmployeeID は社員コードでユーザーを取得します。
func (r *userMongo) FindByEmployeeID(ctx context.Context, code string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"employeeId": code})
}

// Update はプロフィール項目を$setで保存します。ロールは更新しません。
func (r *userMongo) Update(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"password":   u.Password,
		"employeeId": u.EmployeeID,
		"department": u.Department,
		"updatedAt":  now,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	u.UpdatedAt = now
	return nil
}

func (r *userMongo) findMany(ctx context.Context, filter bson.M) ([]entity.User, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toEntity())
	}
	return users, nil
}

// FindByIDs は指定されたIDのユーザーをまとめて取得します。
func (r *userMongo) FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListByRole は指定ロールのユーザーをID順で返します。
func (r *userMongo) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	return r.findMany(ctx, bson.M{"role": string(role)})
}

// DeleteAll は全ユーザーを削除し、ID連番をリセットします。シードデータ投入時のみ使用します。
func (r *userMongo) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	_, err := r.db.Collection(platformmongo.CountersCollection).DeleteOne(ctx, bson.M{"_id": usersCollection})
	return err
}
