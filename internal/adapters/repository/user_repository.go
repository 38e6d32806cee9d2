package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

type MongoUserRepository struct {
	col *mongo.Collection
}

// Ensure MongoUserRepository implements ports.UserRepository
var _ ports.UserRepository = (*MongoUserRepository)(nil)

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(usersCollection)}
}

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	BloodGroup string             `bson:"bloodGroup"`
	District   string             `bson:"district"`
	Upazila    string             `bson:"upazila"`
	Avatar     string             `bson:"avatar,omitempty"`
	Role       string             `bson:"role"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Email:      d.Email,
		BloodGroup: d.BloodGroup,
		District:   d.District,
		Upazila:    d.Upazila,
		Avatar:     d.Avatar,
		Role:       domain.Role(d.Role),
		Status:     domain.UserStatus(d.Status),
		CreatedAt:  d.CreatedAt,
	}
}

// EnsureIndexes creates the unique email index that backs the registration
// duplicate guard.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	doc := userDoc{
		Name:       user.Name,
		Email:      user.Email,
		BloodGroup: user.BloodGroup,
		District:   user.District,
		Upazila:    user.Upazila,
		Avatar:     user.Avatar,
		Role:       string(user.Role),
		Status:     string(user.Status),
		CreatedAt:  user.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.toDomain()
	return &out, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc userDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.User, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.BloodGroup != nil {
		set["bloodGroup"] = *upd.BloodGroup
	}
	if upd.District != nil {
		set["district"] = *upd.District
	}
	if upd.Upazila != nil {
		set["upazila"] = *upd.Upazila
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	var doc userDoc
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *MongoUserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	return r.setField(ctx, id, "role", string(role))
}

func (r *MongoUserRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return r.setField(ctx, id, "status", string(status))
}

func (r *MongoUserRepository) setField(ctx context.Context, id, field, value string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, status domain.UserStatus, page domain.Page) ([]domain.User, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users, err := decodeUsers(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepository) SearchDonors(ctx context.Context, filter domain.DonorFilter) ([]domain.User, int64, error) {
	query := bson.M{
		"role":   string(domain.RoleDonor),
		"status": string(domain.UserActive),
	}
	if filter.BloodGroup != "" {
		query["bloodGroup"] = filter.BloodGroup
	}
	if filter.District != "" {
		query["district"] = filter.District
	}
	if filter.Upazila != "" {
		query["upazila"] = filter.Upazila
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	donors, err := decodeUsers(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return donors, int64(len(donors)), nil
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toDomain())
	}
	return users, cursor.Err()
}
