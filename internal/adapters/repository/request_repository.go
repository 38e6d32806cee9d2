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

type MongoRequestRepository struct {
	col *mongo.Collection
}

// Ensure MongoRequestRepository implements ports.RequestRepository
var _ ports.RequestRepository = (*MongoRequestRepository)(nil)

func NewMongoRequestRepository(db *mongo.Database) *MongoRequestRepository {
	return &MongoRequestRepository{col: db.Collection(requestsCollection)}
}

type requestDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	RequesterName     string             `bson:"requesterName"`
	RequesterEmail    string             `bson:"requesterEmail"`
	RecipientName     string             `bson:"recipientName"`
	RecipientDistrict string             `bson:"recipientDistrict"`
	RecipientUpazila  string             `bson:"recipientUpazila"`
	HospitalName      string             `bson:"hospitalName"`
	Address           string             `bson:"address"`
	BloodGroup        string             `bson:"bloodGroup"`
	DonationDate      string             `bson:"donationDate"`
	DonationTime      string             `bson:"donationTime"`
	Message           string             `bson:"message,omitempty"`
	Status            string             `bson:"status"`
	DonorName         string             `bson:"donorName,omitempty"`
	DonorEmail        string             `bson:"donorEmail,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

func (d requestDoc) toDomain() domain.DonationRequest {
	return domain.DonationRequest{
		ID:                d.ID.Hex(),
		RequesterName:     d.RequesterName,
		RequesterEmail:    d.RequesterEmail,
		RecipientName:     d.RecipientName,
		RecipientDistrict: d.RecipientDistrict,
		RecipientUpazila:  d.RecipientUpazila,
		HospitalName:      d.HospitalName,
		Address:           d.Address,
		BloodGroup:        d.BloodGroup,
		DonationDate:      d.DonationDate,
		DonationTime:      d.DonationTime,
		Message:           d.Message,
		Status:            domain.RequestStatus(d.Status),
		DonorName:         d.DonorName,
		DonorEmail:        d.DonorEmail,
		CreatedAt:         d.CreatedAt,
	}
}

// EnsureIndexes backs the createdAt-descending listings and the status
// filters.
func (r *MongoRequestRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "requesterEmail", Value: 1}}},
	})
	return err
}

func (r *MongoRequestRepository) Create(ctx context.Context, req domain.DonationRequest) (*domain.DonationRequest, error) {
	doc := requestDoc{
		RequesterName:     req.RequesterName,
		RequesterEmail:    req.RequesterEmail,
		RecipientName:     req.RecipientName,
		RecipientDistrict: req.RecipientDistrict,
		RecipientUpazila:  req.RecipientUpazila,
		HospitalName:      req.HospitalName,
		Address:           req.Address,
		BloodGroup:        req.BloodGroup,
		DonationDate:      req.DonationDate,
		DonationTime:      req.DonationTime,
		Message:           req.Message,
		Status:            string(req.Status),
		CreatedAt:         req.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.toDomain()
	return &out, nil
}

func (r *MongoRequestRepository) FindByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc requestDoc
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

func (r *MongoRequestRepository) List(ctx context.Context, filter domain.RequestFilter, page domain.Page) ([]domain.DonationRequest, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.RequesterEmail != "" {
		query["requesterEmail"] = filter.RequesterEmail
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.col.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	requests := make([]domain.DonationRequest, 0)
	for cursor.Next(ctx) {
		var doc requestDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		requests = append(requests, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *MongoRequestRepository) Update(ctx context.Context, id string, upd domain.RequestUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	set := bson.M{}
	if upd.RecipientName != nil {
		set["recipientName"] = *upd.RecipientName
	}
	if upd.RecipientDistrict != nil {
		set["recipientDistrict"] = *upd.RecipientDistrict
	}
	if upd.RecipientUpazila != nil {
		set["recipientUpazila"] = *upd.RecipientUpazila
	}
	if upd.HospitalName != nil {
		set["hospitalName"] = *upd.HospitalName
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.BloodGroup != nil {
		set["bloodGroup"] = *upd.BloodGroup
	}
	if upd.DonationDate != nil {
		set["donationDate"] = *upd.DonationDate
	}
	if upd.DonationTime != nil {
		set["donationTime"] = *upd.DonationTime
	}
	if upd.Message != nil {
		set["message"] = *upd.Message
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRequestRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Claim is the pending->inprogress transition. The status guard lives in the
// filter so the update is atomic: of two concurrent claimers exactly one
// matches.
func (r *MongoRequestRepository) Claim(ctx context.Context, id, donorName, donorEmail string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.RequestPending)},
		bson.M{"$set": bson.M{
			"status":     string(domain.RequestInProgress),
			"donorName":  donorName,
			"donorEmail": donorEmail,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// CloseByOwner guards both the current status and the ownership in the
// filter, so terminal requests can never re-enter the flow through this
// path.
func (r *MongoRequestRepository) CloseByOwner(ctx context.Context, id, requesterEmail string, status domain.RequestStatus) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"_id":            oid,
			"status":         string(domain.RequestInProgress),
			"requesterEmail": requesterEmail,
		},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoRequestRepository) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	cursor, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[domain.RequestStatus]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[domain.RequestStatus(row.Status)] = row.Count
	}
	return counts, cursor.Err()
}
