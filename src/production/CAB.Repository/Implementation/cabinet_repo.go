package implementation

import (
	"context"
	"errors"
	"fmt"

	cabmodels "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Models"
	interfaces "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCabinetRepository struct {
	coll *mongo.Collection
}

// NewMongoCabinetRepository ensures the unique index on cabinet_id
func NewMongoCabinetRepository(ctx context.Context, coll *mongo.Collection) (*MongoCabinetRepository, error) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "cabinet_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("cabinet_id_unique"),
	}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create cabinet_id index: %w", err)
	}
	return &MongoCabinetRepository{coll: coll}, nil
}

func (r *MongoCabinetRepository) Register(ctx context.Context, record cabmodels.CabinetRecord) error {
	_, err := r.coll.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", record.CabinetID, interfaces.ErrCabinetExists)
	}
	return err
}

func (r *MongoCabinetRepository) GetCabinet(ctx context.Context, cabinetID string) (*cabmodels.CabinetRecord, error) {
	var record cabmodels.CabinetRecord
	err := r.coll.FindOne(ctx, bson.M{"cabinet_id": cabinetID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, interfaces.ErrCabinetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MongoCabinetRepository) ListCabinets(ctx context.Context) ([]cabmodels.CabinetRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "cabinet_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]cabmodels.CabinetRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MongoCabinetRepository) Deregister(ctx context.Context, cabinetID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"cabinet_id": cabinetID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrCabinetNotFound
	}
	return nil
}
