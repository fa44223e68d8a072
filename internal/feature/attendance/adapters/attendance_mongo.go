package adapters

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"attendance_backend/internal/feature/attendance/domain/entity"
	"attendance_backend/internal/feature/attendance/usecase"
	platformmongo "attendance_backend/internal/platform/mongo"
	"attendance_backend/internal/shared/clock"
)

const attendancesCollection = "attendances"

// attendanceDocument はattendancesコレクションのドキュメント形式です。
type attendanceDocument struct {
	ID           uint      `bson:"_id"`
	UserID       uint      `bson:"userId"`
	Date         string    `bson:"date"`
	CheckInTime  *string   `bson:"checkInTime"`
	CheckOutTime *string   `bson:"checkOutTime"`
	Status       string    `bson:"status"`
	TotalHours   float64   `bson:"totalHours"`
	LeaveReason  *string   `bson:"leaveReason"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d attendanceDocument) toEntity() entity.Attendance {
	return entity.Attendance{
		ID:           d.ID,
		UserID:       d.UserID,
		Date:         d.Date,
		CheckInTime:  d.CheckInTime,
		CheckOutTime: d.CheckOutTime,
		Status:       entity.Status(d.Status),
		TotalHours:   d.TotalHours,
		LeaveReason:  d.LeaveReason,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// attendanceMongo はAttendanceRepositoryインターフェースのMongoDB実装です。
// {userId, date} のユニーク複合インデックスで1日1件を保証します。
type attendanceMongo struct {
	db   *mongo.Database
	coll *mongo.Collection
	now  func() time.Time
}

var _ usecase.AttendanceRepository = (*attendanceMongo)(nil)

// NewAttendanceMongo はattendanceMongoの新しいインスタンスを生成します。
// createdAt/updatedAt はclkから取得します。nilの場合はシステム時計(UTC)です。
func NewAttendanceMongo(db *mongo.Database, clk clock.Clock) *attendanceMongo {
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &attendanceMongo{db: db, coll: db.Collection(attendancesCollection), now: clk.Now}
}

func attendanceIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("attendance_user_date"),
		},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	}
}

// EnsureIndexes はユニーク複合インデックスと日付インデックスを作成します。
func (r *attendanceMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, attendanceIndexes())
	return err
}

// Create は記録を挿入します。ユニークインデックス違反はusecase.ErrAttendanceExistsになります。
func (r *attendanceMongo) Create(ctx context.Context, a *entity.Attendance) error {
	id, err := platformmongo.NextSequence(ctx, r.db, attendancesCollection)
	if err != nil {
		return err
	}
	now := r.now().UTC()
	doc := attendanceDocument{
		ID:           id,
		UserID:       a.UserID,
		Date:         a.Date,
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       string(a.Status),
		TotalHours:   a.TotalHours,
		LeaveReason:  a.LeaveReason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrAttendanceExists
		}
		return err
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// FindByUserAndDate は指定ユーザー・日付の記録を取得します。
func (r *attendanceMongo) FindByUserAndDate(ctx context.Context, userID uint, date string) (*entity.Attendance, error) {
	var doc attendanceDocument
	err := r.coll.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrAttendanceNotFound
		}
		return nil, err
	}
	a := doc.toEntity()
	return &a, nil
}

// MarkCheckedOut はcheckOutTimeがnullのドキュメントのみを更新します。
func (r *attendanceMongo) MarkCheckedOut(ctx context.Context, id uint, checkOut string, totalHours float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "checkOutTime": nil},
		bson.M{"$set": bson.M{
			"checkOutTime": checkOut,
			"totalHours":   totalHours,
			"updatedAt":    r.now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrAlreadyCheckedOut
	}
	return nil
}

// filter はQueryをMongoDBのフィルタに変換します。
func filter(q entity.Query) bson.M {
	f := bson.M{}
	if q.UserID != nil {
		f["userId"] = *q.UserID
	}
	if q.Status != "" {
		f["status"] = string(q.Status)
	}
	date := bson.M{}
	if q.From != "" {
		date["$gte"] = q.From
	}
	if q.To != "" {
		date["$lte"] = q.To
	}
	if q.MonthPrefix != "" {
		date["$regex"] = bson.Regex{Pattern: "^" + regexp.QuoteMeta(q.MonthPrefix) + "-"}
	}
	// 完全一致も他の日付条件とANDで結合します(SQL実装と同じ)。
	switch {
	case q.Date != "" && len(date) == 0:
		f["date"] = q.Date
	case q.Date != "":
		date["$eq"] = q.Date
		f["date"] = date
	case len(date) > 0:
		f["date"] = date
	}
	return f
}

// List は条件に一致する記録を返します。既定は日付の降順です。
func (r *attendanceMongo) List(ctx context.Context, q entity.Query) ([]entity.Attendance, error) {
	dir := -1
	if q.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: dir}, {Key: "_id", Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := r.coll.Find(ctx, filter(q), opts)
	if err != nil {
		return nil, err
	}
	var docs []attendanceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Attendance, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// Aggregate はステータス別件数と勤務時間の合計を$groupで集計します。
func (r *attendanceMongo) Aggregate(ctx context.Context, q entity.Query) (entity.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter(q)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "hours", Value: bson.D{{Key: "$sum", Value: "$totalHours"}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return entity.Summary{}, err
	}
	var rows []struct {
		Status string  `bson:"_id"`
		Total  int     `bson:"total"`
		Hours  float64 `bson:"hours"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return entity.Summary{}, err
	}

	var s entity.Summary
	for _, row := range rows {
		switch entity.Status(row.Status) {
		case entity.StatusPresent:
			s.Present = row.Total
		case entity.StatusAbsent:
			s.Absent = row.Total
		case entity.StatusLate:
			s.Late = row.Total
		case entity.StatusHalfDay:
			s.HalfDay = row.Total
		}
		s.TotalHours += row.Hours
	}
	return s, nil
}

// DeleteAll は全記録を削除し、ID連番をリセットします。シードデータ投入時のみ使用します。
func (r *attendanceMongo) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	_, err := r.db.Collection(platformmongo.CountersCollection).DeleteOne(ctx, bson.M{"_id": attendancesCollection})
	return err
}
