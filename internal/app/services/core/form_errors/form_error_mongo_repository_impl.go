package formErrors

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FormErrorMongoRepository struct {
	Collection *mongo.Collection
}

func NewFormErrorMongoRepository(db *mongo.Database) contracts.FormErrorRepository {
	return &FormErrorMongoRepository{
		Collection: db.Collection(constvars.MongoCollectionFormEntryErrors),
	}
}

func (repo *FormErrorMongoRepository) FindAll(ctx context.Context) ([]models.FormEntryError, error) {
	formErrors := make([]models.FormEntryError, 0)
	findOptions := options.Find().SetSort(bson.D{{Key: "date_created", Value: -1}})
	cursor, err := repo.Collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	if err := cursor.All(ctx, &formErrors); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return formErrors, nil
}

func (repo *FormErrorMongoRepository) FindByID(ctx context.Context, formErrorID string) (*models.FormEntryError, error) {
	var formError models.FormEntryError
	err := repo.Collection.FindOne(ctx, bson.M{"_id": formErrorID}).Decode(&formError)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &formError, nil
}

func (repo *FormErrorMongoRepository) Update(ctx context.Context, formError *models.FormEntryError) error {
	filter := bson.M{"_id": formError.ID, "version": formError.Version}
	update := bson.M{
		"$set": bson.M{
			"comment":        formError.Comment,
			"commented_by":   formError.CommentedBy,
			"date_commented": formError.DateCommented,
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrFormErrorVersionConflict(formError.ID)
	}
	formError.Version++
	return nil
}

func (repo *FormErrorMongoRepository) Delete(ctx context.Context, formErrorID string, version int64) error {
	result, err := repo.Collection.DeleteOne(ctx, bson.M{"_id": formErrorID, "version": version})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	if result.DeletedCount == 0 {
		return exceptions.ErrFormErrorVersionConflict(formErrorID)
	}
	return nil
}
