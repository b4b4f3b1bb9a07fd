package repository

import (
	"context"
	"time"

	"zxtrack/internal/core/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Store(report *model.Report) error
	FindByIMEI(imei string) ([]*model.Report, error)
	FindLatestByIMEI(imei string) (*model.Report, error)
}

type MongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{
		collection: db.Collection("reports"),
	}
}

func (r *MongoReportRepository) Store(report *model.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

func (r *MongoReportRepository) FindByIMEI(imei string) ([]*model.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"imei": imei})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []*model.Report
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *MongoReportRepository) FindLatestByIMEI(imei string) (*model.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.M{"devtime": -1})
	var report model.Report
	err := r.collection.FindOne(ctx, bson.M{"imei": imei}, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &report, err
}
